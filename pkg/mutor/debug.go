package mutor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-drift/mutor/pkg/core"
)

// debugTimeout bounds how long a debug request waits for the app loop.
const debugTimeout = 2 * time.Second

// maxTreeDepth limits recursion when serializing instance trees.
const maxTreeDepth = 500

// InstanceNode is a serialized component instance.
type InstanceNode struct {
	Tag      string         `json:"tag" yaml:"tag"`
	Key      any            `json:"key,omitempty" yaml:"key,omitempty"`
	Depth    int            `json:"depth" yaml:"depth"`
	State    string         `json:"state" yaml:"state"`
	Children []InstanceNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// InstanceTree serializes inst and its subtree.
func InstanceTree(inst *core.Instance) InstanceNode {
	return serializeInstance(inst, 0)
}

func serializeInstance(inst *core.Instance, depth int) InstanceNode {
	node := InstanceNode{
		Tag:   inst.Tag(),
		Key:   inst.Key(),
		Depth: inst.Depth(),
		State: inst.State().String(),
	}
	if depth >= maxTreeDepth {
		return node
	}
	for _, child := range inst.Children() {
		node.Children = append(node.Children, serializeInstance(child, depth+1))
	}
	return node
}

// DebugHandler serves inspection endpoints for a running app:
//
//	/render-tree    the render tree as text (in-memory tree only)
//	/instance-tree  mounted instances as JSON
//	/runtime        Stats as JSON
//	/metrics        Prometheus metrics, when enabled
//	/health         liveness
//
// Snapshots are taken on the app loop, so Run must be active.
func (a *App) DebugHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/render-tree", a.handleRenderTree)
	mux.HandleFunc("/instance-tree", a.handleInstanceTree)
	mux.HandleFunc("/runtime", a.handleRuntime)
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", a.metrics.Handler())
	return mux
}

// snapshot runs fn on the app loop on behalf of r.
func (a *App) snapshot(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	ctx, cancel := context.WithTimeout(r.Context(), debugTimeout)
	defer cancel()
	if err := a.Do(ctx, fn); err != nil {
		http.Error(w, fmt.Sprintf("app loop unavailable: %v", err), http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (a *App) handleRenderTree(w http.ResponseWriter, r *http.Request) {
	if a.tree == nil {
		http.Error(w, "no render tree", http.StatusNotFound)
		return
	}
	var text string
	if !a.snapshot(w, r, func() { text = a.tree.String() }) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (a *App) handleInstanceTree(w http.ResponseWriter, r *http.Request) {
	var roots []InstanceNode
	if !a.snapshot(w, r, func() {
		for _, inst := range a.Mounted() {
			roots = append(roots, InstanceTree(inst))
		}
	}) {
		return
	}
	writeJSON(w, roots)
}

func (a *App) handleRuntime(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	if !a.snapshot(w, r, func() { stats = a.Stats() }) {
		return
	}
	writeJSON(w, stats)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
