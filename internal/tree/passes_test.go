package tree

import (
	"reflect"
	"strings"
	"testing"
)

func TestOrientation(t *testing.T) {
	path := []string{"fish", "rock", "copper"}

	if got := RightToLeft.Name(path); got != "copper rock fish" {
		t.Errorf("RightToLeft.Name = %q, expected %q", got, "copper rock fish")
	}
	if got := LeftToRight.Name(path); got != "fish rock copper" {
		t.Errorf("LeftToRight.Name = %q, expected %q", got, "fish rock copper")
	}
	if got := RightToLeft.Join("coral", "staghorn"); got != "staghorn coral" {
		t.Errorf("RightToLeft.Join = %q", got)
	}
	if got := LeftToRight.Join("Washington", "Fort Ward"); got != "Washington Fort Ward" {
		t.Errorf("LeftToRight.Join = %q", got)
	}
	if !reflect.DeepEqual(path, []string{"fish", "rock", "copper"}) {
		t.Errorf("Lineage must not modify its input")
	}
}

func TestCompress(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")

	// fish/rock/copper holds a, fish/rock/black holds b, nudibranch/lemon/sea holds a
	root := Branch(map[string]*Node{
		"fish": Branch(map[string]*Node{
			"rock": Branch(map[string]*Node{
				"copper": Leaf(a),
				"black":  Leaf(b),
			}),
		}),
		"nudibranch": Branch(map[string]*Node{
			"lemon": Branch(map[string]*Node{"sea": Leaf(a)}),
		}),
	})

	compressed := Compress(root, RightToLeft)

	expected := []string{"rock fish", "sea lemon nudibranch"}
	if got := compressed.Keys(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("Keys() = %q, expected %q", got, expected)
	}
	if got := compressed.Child("rock fish").Keys(); !reflect.DeepEqual(got, []string{"black", "copper"}) {
		t.Errorf("rock fish keys = %q", got)
	}
	if compressed.Count() != root.Count() {
		t.Errorf("Count changed from %d to %d", root.Count(), compressed.Count())
	}
	if root.Child("fish") == nil {
		t.Errorf("Compress must not modify its input")
	}
}

func TestCompressLeftToRight(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	root := Branch(map[string]*Node{
		"Washington": Branch(map[string]*Node{
			"Fort Ward": Branch(map[string]*Node{"2021-01-01": Leaf(a)}),
		}),
	})

	compressed := Compress(root, LeftToRight)
	if got := compressed.Keys(); !reflect.DeepEqual(got, []string{"Washington Fort Ward 2021-01-01"}) {
		t.Errorf("Keys() = %q", got)
	}
}

func TestCompressFixedPoint(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")
	root := Branch(map[string]*Node{
		"a": Branch(map[string]*Node{"b": Branch(map[string]*Node{"c": Branch(map[string]*Node{"d": Leaf(a)})})}),
		"x": Branch(map[string]*Node{"y": Branch(map[string]*Node{"z": Leaf(b)})}),
		"p": Branch(map[string]*Node{
			"q": Leaf(a),
			"r": Branch(map[string]*Node{"s": Leaf(b)}),
		}),
	})

	once := Compress(root, RightToLeft)
	twice := Compress(once, RightToLeft)
	if !Equal(once, twice) {
		t.Errorf("second Compress changed the tree")
	}

	expected := []string{"d c b a", "p", "z y x"}
	if got := once.Keys(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Keys() = %q, expected %q", got, expected)
	}
	if got := once.Child("p").Keys(); !reflect.DeepEqual(got, []string{"q", "s r"}) {
		t.Errorf("p keys = %q", got)
	}
}

func TestCompressCollision(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")

	// "rock fish" already exists when fish/rock collapses into it
	root := Branch(map[string]*Node{
		"top": Branch(map[string]*Node{
			"rock fish": Leaf(a),
			"fish":      Branch(map[string]*Node{"rock": Leaf(b)}),
			"other":     Leaf(a),
		}),
	})

	compressed := Compress(root, RightToLeft)
	merged := compressed.Child("top").Child("rock fish")
	if merged == nil || len(merged.Data()) != 2 {
		t.Fatalf("collided keys were not merged: %v", compressed.Child("top").Keys())
	}
}

func TestPrune(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	many := []*Node{Leaf(a), Leaf(a), Leaf(a)}

	root := Branch(map[string]*Node{
		"rock fish":  New(map[string]*Node{"copper": many[0], "black": many[1]}, nil),
		"reef squid": Leaf(a),
		"seagull":    Leaf(a),
		"sea lemon":  Branch(map[string]*Node{"x": Leaf(a, a, a)}),
	})

	pruned, removed := Prune(root, 2, map[string]bool{"reef squid": true})

	if got := pruned.Keys(); !reflect.DeepEqual(got, []string{"reef squid", "sea lemon"}) {
		t.Errorf("Keys() = %q", got)
	}
	if !reflect.DeepEqual(removed, []string{"rock fish", "seagull"}) {
		t.Errorf("removed = %q", removed)
	}
	if root.Count()-pruned.Count() != 3 {
		t.Errorf("pruned %d images, expected 3", root.Count()-pruned.Count())
	}
}

func TestPruneOnlyTopLevel(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	root := Branch(map[string]*Node{
		"fish": Branch(map[string]*Node{"rock": Leaf(a, a, a), "lonely": Leaf(a)}),
	})

	pruned, removed := Prune(root, 1, nil)
	if len(removed) != 0 {
		t.Errorf("removed = %q, expected none", removed)
	}
	if pruned.Child("fish").Child("lonely") == nil {
		t.Errorf("nested keys must not be pruned")
	}
}

func TestDataToVarious(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")
	lifeStages := map[string]bool{"juvenile": true, "eggs": true, "mating": true, "gravid": true}

	root := Branch(map[string]*Node{
		"fish": New(map[string]*Node{"rock": Leaf(b)}, nil),
		"rock fish": New(map[string]*Node{
			"copper": Leaf(b),
		}, nil),
		"greenling": New(map[string]*Node{"juvenile": Leaf(b)}, nil),
		"lingcod":   New(map[string]*Node{"eggs": Leaf(b), "juvenile": Leaf(b)}, nil),
	})
	root = Merge(root, Branch(map[string]*Node{
		"rock fish": Leaf(a),
		"greenling": Leaf(a),
		"lingcod":   Leaf(a),
	}))

	out := DataToVarious(root, lifeStages)

	tests := []struct {
		key      string
		expected []string
	}{
		{"fish", []string{"rock"}},
		{"rock fish", []string{"copper", "various"}},
		{"greenling", []string{"adult", "juvenile"}},
		{"lingcod", []string{"adult", "eggs", "juvenile"}},
	}
	for _, tt := range tests {
		node := out.Child(tt.key)
		if got := node.Keys(); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("%s keys = %q, expected %q", tt.key, got, tt.expected)
		}
		if node.HasData() {
			t.Errorf("%s still holds data", tt.key)
		}
	}
	if out.Count() != root.Count() {
		t.Errorf("Count changed from %d to %d", root.Count(), out.Count())
	}
}

func TestUnnest(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")
	c := img("2021-01-01 Fort Ward", "003")

	root := Branch(map[string]*Node{
		"coral": Branch(map[string]*Node{
			"staghorn": New(map[string]*Node{
				"fused":    Leaf(b),
				"juvenile": Leaf(c),
			}, nil),
		}),
	})
	root = Merge(root, Branch(map[string]*Node{
		"coral": Branch(map[string]*Node{"staghorn": Leaf(a)}),
	}))

	species := map[string]string{
		"staghorn coral":       "Acropora cervicornis",
		"fused staghorn coral": "Acropora prolifera",
		// a life stage resolves to its parent's species and stays put
		"juvenile staghorn coral": "Acropora cervicornis",
	}
	resolve := func(lineage []string) string {
		return species[strings.Join(lineage, " ")]
	}

	out := Unnest(root, RightToLeft, resolve)

	coral := out.Child("coral")
	if got := coral.Keys(); !reflect.DeepEqual(got, []string{"fused staghorn", "staghorn"}) {
		t.Fatalf("coral keys = %q", got)
	}
	staghorn := coral.Child("staghorn")
	if got := staghorn.Data(); len(got) != 1 || got[0] != a {
		t.Errorf("staghorn data = %v, expected [%v]", got, a)
	}
	if got := staghorn.Keys(); !reflect.DeepEqual(got, []string{"juvenile"}) {
		t.Errorf("staghorn keys = %q", got)
	}
	if got := coral.Child("fused staghorn").Data(); len(got) != 1 || got[0] != b {
		t.Errorf("fused staghorn data = %v, expected [%v]", got, b)
	}
	if out.Count() != root.Count() {
		t.Errorf("Count changed from %d to %d", root.Count(), out.Count())
	}
}

func TestUnnestWithoutSpecies(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	b := img("2021-01-01 Fort Ward", "002")
	root := Branch(map[string]*Node{
		"fish": New(map[string]*Node{"rock": Leaf(b)}, nil),
	})
	root = Merge(root, Branch(map[string]*Node{"fish": Leaf(a)}))

	out := Unnest(root, RightToLeft, func([]string) string { return "" })
	if !Equal(out, root) {
		t.Errorf("Unnest changed a tree with no species")
	}
}

func TestRewriteDropsEmpty(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	root := Branch(map[string]*Node{
		"keep": Leaf(a),
		"drop": Branch(map[string]*Node{"inner": Leaf(a)}),
	})

	out := Rewrite(root, func(path []string, n *Node) *Node {
		if len(path) > 0 && path[len(path)-1] == "inner" {
			return nil
		}
		return n
	})

	if got := out.Keys(); !reflect.DeepEqual(got, []string{"keep"}) {
		t.Errorf("Keys() = %q, expected [keep]", got)
	}
}

func TestTopCounts(t *testing.T) {
	a := img("2021-01-01 Fort Ward", "001")
	root := Branch(map[string]*Node{
		"small": Leaf(a),
		"big":   Leaf(a, a, a),
	})

	got := TopCounts(root)
	expected := []KeyCount{{"big", 3}, {"small", 1}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("TopCounts = %v, expected %v", got, expected)
	}
}
