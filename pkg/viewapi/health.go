package viewapi

import (
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/health"
)

// newHealthChecker wires the dashboard's components into health reports.
// Readiness needs a loaded graph and a reachable backend.
func newHealthChecker(ctrl *controller.Controller) *health.HealthChecker {
	hc := health.NewHealthChecker()

	backend := health.BackendCheck(ctrl.Ping)
	dataset := health.DatasetCheck(func() (uint64, int) {
		st := ctrl.Snapshot()
		if st.Dataset == nil {
			return 0, 0
		}
		return st.DatasetVersion, len(st.Dataset.Nodes)
	})

	hc.RegisterCheck("backend", backend)
	hc.RegisterCheck("dataset", dataset)
	hc.RegisterCheck("change_stream", health.StreamCheck(ctrl.DroppedChanges))
	hc.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))

	hc.RegisterReadinessCheck("backend", backend)
	hc.RegisterReadinessCheck("dataset", dataset)

	hc.RegisterLivenessCheck("process", health.SimpleCheck("process"))
	return hc
}
