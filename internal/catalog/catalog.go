// Package catalog holds the compiled-in table of known issue signatures
// and their remediation bundles. The catalog is immutable and loaded once
// per process; declaration order is the matching priority.
package catalog

import "github.com/deploymedic/deploymedic/pkg/models"

// Signatures returns the full signature list in priority order. Callers
// must treat the returned slice as read-only.
func Signatures() []models.IssueSignature {
	return signatures
}

// Lookup returns the signature with the given id.
func Lookup(id string) (models.IssueSignature, bool) {
	sig, ok := byID[id]
	return sig, ok
}

// GenericFallback returns the remediation bundle used when nothing more
// specific could be chosen.
func GenericFallback() models.RemediationBundle {
	return genericBundle
}

var byID = func() map[string]models.IssueSignature {
	m := make(map[string]models.IssueSignature, len(signatures))
	for _, sig := range signatures {
		m[sig.ID] = sig
	}
	return m
}()

// Remediation bundles are shared across related signatures. Success rates
// are priors from observed fix outcomes, not guarantees.

var dockerBuildBundle = models.RemediationBundle{
	Title: "Docker Build Fix - File Copy Resolution",
	Steps: []string{
		"Verify all files exist in the expected locations before building",
		"Check .dockerignore is not excluding required files",
		"Ensure Dockerfile COPY paths match the actual file structure",
		"Rebuild with --no-cache to get a fresh build context",
		"Verify the build succeeds and test the resulting container",
	},
	ExampleCode: `# List build context contents
find . -type f | grep -E "\.(py|js|json|txt|yml|yaml)$" | head -20

# Check .dockerignore for excluded files
cat .dockerignore 2>/dev/null || echo "no .dockerignore"

# Inspect Dockerfile COPY commands
grep -n "COPY\|ADD" Dockerfile

# Clean rebuild with verbose output
docker build --no-cache --progress=plain -t <app> .`,
	EstimatedMinutes: models.MinutesRange{Lo: 10, Hi: 20},
	SuccessRate:      0.89,
}

var portConflictBundle = models.RemediationBundle{
	Title: "Docker Port Conflict Resolution",
	Steps: []string{
		"Identify which process is using the conflicting port",
		"Stop the conflicting Docker container if it is not essential",
		"Remove the conflicting container if it is no longer needed",
		"Alternatively, run your application on a different host port",
		"Restart your application container with the resolved port",
	},
	ExampleCode: `# Find what is using the port
ss -tulpn | grep <port>
docker ps --format "table {{.Names}}\t{{.Ports}}" | grep <port>

# Stop and remove the conflicting container
docker stop $(docker ps -q --filter "publish=<port>")
docker rm $(docker ps -aq --filter "publish=<port>")

# Or remap your application to a free port
docker run -p 8080:<port> <app>`,
	EstimatedMinutes: models.MinutesRange{Lo: 5, Hi: 10},
	SuccessRate:      0.92,
}

var imagePullBundle = models.RemediationBundle{
	Title: "Kubernetes Image Pull Resolution",
	Steps: []string{
		"Verify the container image exists and is accessible",
		"Check image registry authentication if the registry is private",
		"Update the deployment with the correct image tag and path",
		"Restart pods to pull the corrected image",
		"Monitor pod status to confirm a successful start",
	},
	ExampleCode: `# Check the configured image
kubectl describe deployment <app> | grep Image

# Verify the image is pullable
docker pull <image>:<tag>

# Fix the image reference and roll
kubectl set image deployment/<app> <app>=<image>:<tag>
kubectl rollout restart deployment/<app>
kubectl rollout status deployment/<app>`,
	EstimatedMinutes: models.MinutesRange{Lo: 10, Hi: 15},
	SuccessRate:      0.87,
}

var resourceBundle = models.RemediationBundle{
	Title: "Cluster Resource Exhaustion Fix",
	Steps: []string{
		"Increase memory requests and limits for the affected workload",
		"Scale the cluster or enable autoscaling to add capacity",
		"Spread load with more replicas and a horizontal pod autoscaler",
		"Monitor node and pod resource usage after the change",
		"Set up alerts for future resource pressure",
	},
	ExampleCode: `# Raise memory limits
kubectl patch deployment <app> -p '{"spec":{"template":{"spec":{"containers":[{"name":"<app>","resources":{"requests":{"memory":"512Mi"},"limits":{"memory":"2Gi"}}}]}}}'

# Distribute load and autoscale
kubectl scale deployment <app> --replicas=3
kubectl autoscale deployment <app> --min=2 --max=10 --cpu-percent=70

# Verify
kubectl top nodes
kubectl top pods -l app=<app>`,
	EstimatedMinutes: models.MinutesRange{Lo: 5, Hi: 10},
	SuccessRate:      0.93,
}

var podCreationBundle = models.RemediationBundle{
	Title: "Pod Creation Failure Resolution",
	Steps: []string{
		"Check image pull secrets and registry access",
		"Verify service account permissions and RBAC configuration",
		"Review resource quotas and namespace limits",
		"Retry the rollout and watch pod events",
	},
	ExampleCode: `kubectl get secrets
kubectl describe quota -n <namespace>
kubectl auth can-i create pods --as system:serviceaccount:<namespace>:<sa>
kubectl get events -n <namespace> --sort-by=.lastTimestamp | tail -20`,
	EstimatedMinutes: models.MinutesRange{Lo: 10, Hi: 20},
	SuccessRate:      0.86,
}

var dbConnectionBundle = models.RemediationBundle{
	Title: "Database Connection Resolution",
	Steps: []string{
		"Verify the database server is running and reachable",
		"Check network connectivity and firewall rules",
		"Validate the connection string and credentials",
		"Test the connection and restart the application",
		"Add connection health checks and retry logic",
	},
	ExampleCode: `# Network reachability
ping -c 3 <db-host>
nc -zv <db-host> <db-port>

# Direct connection test
psql "postgresql://<user>:<pass>@<db-host>:<db-port>/<db>" -c "SELECT 1;"
mysql -h <db-host> -P <db-port> -u <user> -p<pass> <db> -e "SELECT 1;"

# Restart the consumer
kubectl rollout restart deployment/<app>`,
	EstimatedMinutes: models.MinutesRange{Lo: 15, Hi: 25},
	SuccessRate:      0.84,
}

var dbAuthBundle = models.RemediationBundle{
	Title: "Database Authentication Resolution",
	Steps: []string{
		"Verify the database user credentials are correct",
		"Check the user's permissions for the specific database",
		"Grant the necessary privileges to the user",
		"Test the connection with the updated permissions",
		"Restart the application to pick up new credentials",
	},
	ExampleCode: `# Test current credentials
mysql -h <db-host> -u <user> -p<pass> -e "SELECT 1;"

# Fix grants as an administrator
mysql -h <db-host> -u root -p -e "
GRANT ALL PRIVILEGES ON <db>.* TO '<user>'@'%';
FLUSH PRIVILEGES;
SHOW GRANTS FOR '<user>'@'%';"

# Confirm access
mysql -h <db-host> -u <user> -p<pass> <db> -e "SHOW TABLES;"`,
	EstimatedMinutes: models.MinutesRange{Lo: 10, Hi: 15},
	SuccessRate:      0.85,
}

var schemaBundle = models.RemediationBundle{
	Title: "Database Schema Resolution",
	Steps: []string{
		"Identify the missing table or relation from the error message",
		"Check whether database migrations exist and run them",
		"Create missing tables with the proper schema if no migrations exist",
		"Verify the application can connect and query the tables",
		"Test full application functionality",
	},
	ExampleCode: `# Locate migration tooling
find . -name "*migration*" -o -name "*migrate*" | head -10

# Run pending migrations (pick the stack in use)
python manage.py migrate
npx sequelize-cli db:migrate
migrate -path migrations -database "<database-url>" up

# Verify the relation now exists
psql "<database-url>" -c "\d <table>"
psql "<database-url>" -c "SELECT COUNT(*) FROM <table>;"`,
	EstimatedMinutes: models.MinutesRange{Lo: 15, Hi: 30},
	SuccessRate:      0.91,
}

var envConfigBundle = models.RemediationBundle{
	Title: "Environment Configuration Fix",
	Steps: []string{
		"Set the missing environment variables in the deployment spec",
		"Create ConfigMaps for non-sensitive configuration",
		"Use Secrets for sensitive values like passwords",
		"Verify environment variable injection in the running container",
	},
	ExampleCode: `# Inject via ConfigMap / Secret
kubectl create configmap <app>-config --from-env-file=.env
kubectl create secret generic <app>-secrets --from-literal=DATABASE_URL='<connection-string>'

# Confirm the variable is present in the pod
kubectl exec deploy/<app> -- env | grep <VAR_NAME>`,
	EstimatedMinutes: models.MinutesRange{Lo: 5, Hi: 15},
	SuccessRate:      0.90,
}

var genericBundle = models.RemediationBundle{
	Title: "General System Troubleshooting Guide",
	Steps: []string{
		"Check system logs for error patterns and timestamps",
		"Verify all services are running and responding",
		"Test network connectivity and resource availability",
		"Review recent configuration changes",
		"Restart affected services and monitor the results",
	},
	ExampleCode: `# Health overview
kubectl get pods --all-namespaces | grep -v Running
docker ps -a | grep -v Up
systemctl --failed | head -10

# Resources
kubectl top nodes
df -h | grep -E "(9[0-9]%|100%)"
free -h

# Recent errors
journalctl --since "1 hour ago" --priority=err | head -20`,
	EstimatedMinutes: models.MinutesRange{Lo: 20, Hi: 30},
	SuccessRate:      0.70,
}

// signatures is the catalog, highest priority first. Docker build issues
// outrank the broader network/database families because their keyword sets
// overlap with more generic ones further down.
var signatures = []models.IssueSignature{
	{
		ID:               "docker-copy-missing",
		RequiredKeywords: []string{"copy failed", "file not found"},
		Severity:         models.SeverityCritical,
		Title:            "Docker COPY Failed - File Not Found",
		Description:      "Docker COPY command failed - missing file in build context",
		Remediation:      dockerBuildBundle,
	},
	{
		ID:               "docker-copy-ignored",
		RequiredKeywords: []string{"copy failed", "dockerignore"},
		Severity:         models.SeverityCritical,
		Title:            "Docker COPY Failed - File Excluded",
		Description:      "File excluded by .dockerignore or missing from build context",
		Remediation:      dockerBuildBundle,
	},
	{
		ID:               "docker-build-context",
		RequiredKeywords: []string{"copy failed", "build context"},
		Severity:         models.SeverityCritical,
		Title:            "Docker Build Context Error",
		Description:      "Required file not found in Docker build context",
		Remediation:      dockerBuildBundle,
	},
	{
		ID:               "dockerfile-missing",
		RequiredKeywords: []string{"dockerfile", "not found"},
		Severity:         models.SeverityCritical,
		Title:            "Dockerfile Missing",
		Description:      "Dockerfile not found in build context",
		Remediation:      dockerBuildBundle,
	},
	{
		ID:               "docker-port-allocated",
		RequiredKeywords: []string{"port", "already allocated"},
		Severity:         models.SeverityCritical,
		Title:            "Docker Port Conflict",
		Description:      "Docker container port is already in use by another process",
		Remediation:      portConflictBundle,
	},
	{
		ID:               "docker-port-bind",
		RequiredKeywords: []string{"bind for", "failed"},
		Severity:         models.SeverityCritical,
		Title:            "Docker Port Bind Failed",
		Description:      "Docker cannot bind to port - port conflict detected",
		Remediation:      portConflictBundle,
	},
	{
		ID:               "k8s-image-pullbackoff",
		RequiredKeywords: []string{"imagepullbackoff"},
		Severity:         models.SeverityCritical,
		Title:            "Image Pull BackOff Error",
		Description:      "Kubernetes failed to pull container image",
		Remediation:      imagePullBundle,
	},
	{
		ID:               "k8s-image-pull-failed",
		RequiredKeywords: []string{"failed to pull image"},
		Severity:         models.SeverityCritical,
		Title:            "Container Image Pull Failed",
		Description:      "Cannot pull container image from registry",
		Remediation:      imagePullBundle,
	},
	{
		ID:               "pg-relation-missing",
		RequiredKeywords: []string{"relation", "does not exist"},
		Severity:         models.SeverityCritical,
		Title:            "PostgreSQL Relation Missing",
		Description:      "Database table or relation does not exist - schema migration required",
		Remediation:      schemaBundle,
	},
	{
		ID:               "pg-table-missing",
		RequiredKeywords: []string{"table", "does not exist"},
		Severity:         models.SeverityCritical,
		Title:            "Database Table Not Found",
		Description:      "Database table missing - needs schema creation or migration",
		Remediation:      schemaBundle,
	},
	{
		ID:               "pg-column-missing",
		RequiredKeywords: []string{"column", "does not exist"},
		Severity:         models.SeverityHigh,
		Title:            "Database Column Missing",
		Description:      "Database column missing - schema migration required",
		Remediation:      schemaBundle,
	},
	{
		ID:               "db-access-denied",
		RequiredKeywords: []string{"access denied", "user"},
		Severity:         models.SeverityCritical,
		Title:            "Database Access Denied",
		Description:      "Database user authentication failed - permissions or credentials issue",
		Remediation:      dbAuthBundle,
	},
	{
		ID:               "db-host-denied",
		RequiredKeywords: []string{"host", "not allowed", "connect"},
		Severity:         models.SeverityCritical,
		Title:            "Database Host Access Denied",
		Description:      "Database user not allowed to connect from this host",
		Remediation:      dbAuthBundle,
	},
	{
		ID:               "db-timeout",
		RequiredKeywords: []string{"database", "timeout"},
		Severity:         models.SeverityCritical,
		Title:            "Database Connection Timeout",
		Description:      "Database connection timeout detected",
		Remediation:      dbConnectionBundle,
	},
	{
		ID:               "db-conn-refused",
		RequiredKeywords: []string{"connection refused", "database"},
		Severity:         models.SeverityCritical,
		Title:            "Database Connection Refused",
		Description:      "Database server refusing connections",
		Remediation:      dbConnectionBundle,
	},
	{
		ID:               "db-conn-failed",
		RequiredKeywords: []string{"database", "connect", "failed"},
		Severity:         models.SeverityCritical,
		Title:            "Database Connection Failed",
		Description:      "Failed to establish database connection",
		Remediation:      dbConnectionBundle,
	},
	{
		ID:               "env-database-url",
		RequiredKeywords: []string{"database_url", "not set"},
		Severity:         models.SeverityCritical,
		Title:            "Missing DATABASE_URL",
		Description:      "DATABASE_URL environment variable not set",
		Remediation:      envConfigBundle,
	},
	{
		ID:               "env-missing",
		RequiredKeywords: []string{"env", "not set"},
		Severity:         models.SeverityHigh,
		Title:            "Missing Environment Variable",
		Description:      "Required environment variable not configured",
		Remediation:      envConfigBundle,
	},
	{
		ID:               "k8s-oom",
		RequiredKeywords: []string{"insufficient memory"},
		Severity:         models.SeverityHigh,
		Title:            "Memory Resource Exhaustion",
		Description:      "Not enough memory available for the workload",
		Remediation:      resourceBundle,
	},
	{
		ID:               "k8s-node-pressure",
		RequiredKeywords: []string{"node pressure eviction"},
		Severity:         models.SeverityCritical,
		Title:            "Node Under Pressure",
		Description:      "Node evicting pods due to resource pressure",
		Remediation:      resourceBundle,
	},
	{
		ID:               "k8s-no-nodes",
		RequiredKeywords: []string{"no nodes available"},
		Severity:         models.SeverityHigh,
		Title:            "No Available Nodes",
		Description:      "No nodes available for scheduling",
		Remediation:      resourceBundle,
	},
	{
		ID:               "k8s-pod-create-failed",
		RequiredKeywords: []string{"failed to create pod"},
		Severity:         models.SeverityHigh,
		Title:            "Pod Creation Failed",
		Description:      "Unable to create pods",
		Remediation:      podCreationBundle,
	},
}
