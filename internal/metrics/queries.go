package metrics

import "fmt"

// PromQL query templates for collecting object store traffic.
//
// These queries expect the storage client library of each workload to export:
//   - objectstore_requests_total{workload, operation="put"|"get", region}
//   - objectstore_transfer_bytes_total{workload, direction="ingress"|"egress", region}
//   - objectstore_stored_bytes{workload} and objectstore_objects{workload}
//
// region is the application region the request originated from.

// queryStoredBytes returns PromQL for the peak stored volume per workload.
func queryStoredBytes(window string) string {
	return fmt.Sprintf(`max by (workload) (max_over_time(objectstore_stored_bytes[%s]))`, window)
}

// queryObjectCount returns PromQL for the peak object count per workload.
func queryObjectCount(window string) string {
	return fmt.Sprintf(`max by (workload) (max_over_time(objectstore_objects[%s]))`, window)
}

// queryRequests returns PromQL for the number of requests of one operation
// per (workload, region) over the window.
func queryRequests(operation, window string) string {
	return fmt.Sprintf(`sum by (workload, region) (
  increase(objectstore_requests_total{operation="%s"}[%s])
)`, operation, window)
}

// queryTransfer returns PromQL for the bytes moved in one direction
// per (workload, region) over the window.
func queryTransfer(direction, window string) string {
	return fmt.Sprintf(`sum by (workload, region) (
  increase(objectstore_transfer_bytes_total{direction="%s"}[%s])
)`, direction, window)
}
