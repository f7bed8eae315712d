package reindex

import "os"

// Derived artifacts and their sidecar, addressed relative to the graph path
// prefix (graph folder + prefix, e.g. "graph_folder/graph").
const (
	forwardEFSuffix  = ".ef"
	labelledSuffix   = "-labelled"
	labelledEFSuffix = "-labelled.ef"
	nodeTypeSuffix   = ".node2type.bin"
	nodeCountSuffix  = ".nodes.count.txt"
)

// Artifact names used in logs, metrics and the run journal.
const (
	ArtifactForwardEF  = "forward-ef"
	ArtifactLabelledEF = "labelled-ef"
	ArtifactNodeType   = "node2type"
)

func ForwardEFPath(prefix string) string  { return prefix + forwardEFSuffix }
func LabelledEFPath(prefix string) string { return prefix + labelledEFSuffix }
func NodeTypePath(prefix string) string   { return prefix + nodeTypeSuffix }
func NodeCountPath(prefix string) string  { return prefix + nodeCountSuffix }

// Flags are the rebuild policy for one run. Force implies EF.
type Flags struct {
	Force bool
	EF    bool
}

// Snapshot captures artifact existence at the start of a run.
type Snapshot struct {
	ForwardEF  bool
	LabelledEF bool
	NodeType   bool
}

// TakeSnapshot probes the filesystem once per artifact. Stat errors other
// than non-existence are treated as "absent": the worst case is a redundant
// rebuild, which is idempotent.
func TakeSnapshot(prefix string) Snapshot {
	return Snapshot{
		ForwardEF:  fileExists(ForwardEFPath(prefix)),
		LabelledEF: fileExists(LabelledEFPath(prefix)),
		NodeType:   fileExists(NodeTypePath(prefix)),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Plan is the per-artifact rebuild decision for one run.
type Plan struct {
	ForwardEF  bool
	LabelledEF bool
	NodeType   bool
}

// Stale is the uniform staleness predicate: an artifact is rebuilt when its
// subset flag (or force) is set, or when it does not exist.
func Stale(force, subset, exists bool) bool {
	return force || subset || !exists
}

// BuildPlan derives the rebuild plan from flags and a filesystem snapshot.
// Pure so decision logic is testable without touching disk or processes.
//
// The two EF artifacts share the effective force||ef decision but are
// evaluated independently: one being stale never chains a rebuild of the
// other. The node-type map is gated only on force or absence; the ef flag
// never touches it.
func BuildPlan(flags Flags, snap Snapshot) Plan {
	ef := flags.EF || flags.Force
	return Plan{
		ForwardEF:  Stale(false, ef, snap.ForwardEF),
		LabelledEF: Stale(false, ef, snap.LabelledEF),
		NodeType:   Stale(flags.Force, false, snap.NodeType),
	}
}

// Empty reports whether the plan requires no regeneration work.
func (p Plan) Empty() bool {
	return !p.ForwardEF && !p.LabelledEF && !p.NodeType
}
