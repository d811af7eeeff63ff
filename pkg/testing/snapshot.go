package testing

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/mutor/pkg/mutor"
)

// GoldenDir holds golden files relative to the test's package directory.
const GoldenDir = "testdata/golden"

// Snapshot returns the rendered tree in render.Format notation.
func (t *Tester) Snapshot() string {
	return t.tree.String()
}

// InstanceSnapshot returns the mounted instance tree as YAML.
func (t *Tester) InstanceSnapshot() ([]byte, error) {
	if t.root == nil {
		return yaml.Marshal([]mutor.InstanceNode{})
	}
	return yaml.Marshal(mutor.InstanceTree(t.root))
}

// MatchesGolden compares the rendered tree against the golden file name.
// Run the test with -update to rewrite it.
func (t *Tester) MatchesGolden(tt *testing.T, name string) {
	tt.Helper()
	g := goldie.New(tt,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(tt, name, []byte(t.Snapshot()))
}

// MatchesInstanceGolden compares the instance tree, as YAML, against the
// golden file name.
func (t *Tester) MatchesInstanceGolden(tt *testing.T, name string) {
	tt.Helper()
	data, err := t.InstanceSnapshot()
	if err != nil {
		tt.Fatalf("marshal instance tree: %v", err)
	}
	g := goldie.New(tt,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".yaml.golden"),
	)
	g.Assert(tt, name, data)
}
