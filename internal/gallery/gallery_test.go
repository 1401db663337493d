package gallery

import (
	"reflect"
	"strings"
	"testing"

	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/dive"
	"github.com/franz/dive-gallery/internal/names"
)

type fakeResolver map[string][2]string

func (f fakeResolver) Scientific(lineage []string) (string, string, bool) {
	for i := 0; i < len(lineage); i++ {
		if hit, ok := f[strings.Join(lineage[i:], " ")]; ok {
			return hit[0], hit[1], true
		}
	}
	return "", "", false
}

func testConfig() *config.Static {
	return &config.Static{
		Ignore:         []string{"unknown", "diver"},
		Splits:         []string{"fish", "coral"},
		Qualifiers:     []string{"juvenile"},
		Categories:     map[string][]string{"fish": {"goby"}},
		LifeStages:     []string{"juvenile", "eggs"},
		PruneThreshold: 1,
		PruneKeep:      []string{"reef squid"},
	}
}

func newBuilder(resolver Resolver) *Builder {
	cfg := testConfig()
	return New(cfg, names.New(cfg), resolver)
}

func images(diveID string, subjects ...string) []*dive.Image {
	var out []*dive.Image
	for i, s := range subjects {
		out = append(out, &dive.Image{
			Sequence:   strings.Repeat("0", 2) + string(rune('1'+i)),
			RawSubject: s,
			DiveID:     diveID,
			Index:      i,
			Total:      len(subjects),
		})
	}
	return out
}

func TestRoute(t *testing.T) {
	if got := Route("copper rock fish"); !reflect.DeepEqual(got, []string{"fish", "rock", "copper"}) {
		t.Errorf("Route = %q", got)
	}
}

func TestMakeTreeRockfish(t *testing.T) {
	b := newBuilder(nil)
	root, ignored := b.MakeTree(images("2021-05-01 Fort Ward", "Rockfish"))

	if len(ignored) != 0 {
		t.Fatalf("ignored %d images", len(ignored))
	}
	rock := root.Child("fish").Child("rock")
	if rock == nil || len(rock.Data()) != 1 {
		t.Errorf("expected one image at fish/rock, keys %q", root.Keys())
	}
}

func TestMakeTreeIgnored(t *testing.T) {
	b := newBuilder(nil)
	root, ignored := b.MakeTree(images("2021-05-01 Fort Ward", "Unknown Fish", "Diver", "", "Goby"))

	if len(ignored) != 3 {
		t.Errorf("ignored %d images, expected 3", len(ignored))
	}
	if root.Child("fish").Child("goby") == nil {
		t.Errorf("goby should route to fish/goby, keys %q", root.Keys())
	}
}

func TestBuildConjunction(t *testing.T) {
	b := newBuilder(nil)
	b.threshold = 0
	result := b.Build(images("2021-05-01 Fort Ward", "Fish and Coral"))

	if result.Expanded != 1 || len(result.Images) != 2 {
		t.Fatalf("expected two records, got %d (expanded %d)", len(result.Images), result.Expanded)
	}
	if got := result.Tree.Keys(); !reflect.DeepEqual(got, []string{"coral", "fish"}) {
		t.Errorf("Keys() = %q, expected [coral fish]", got)
	}
	a, c := result.Images[0], result.Images[1]
	if a.Sequence != c.Sequence || a.DiveID != c.DiveID {
		t.Errorf("expanded records do not share sequence and dive")
	}
}

func TestBuildCountInvariant(t *testing.T) {
	b := newBuilder(nil)
	input := images("2021-05-01 Fort Ward",
		"Rockfish", "Copper Rockfish", "Copper Rockfish", "Juvenile Copper Rockfish",
		"Reef Squid", "Seagull", "Unknown", "Goby and Lingcod", "Blackeye Goby",
	)

	result := b.Build(input)

	expected := len(result.Images) - len(result.Ignored) - result.PrunedImages
	if got := result.Tree.Count(); got != expected {
		t.Errorf("Tree.Count() = %d, expected %d", got, expected)
	}
	if !reflect.DeepEqual(result.Pruned, []string{"lingcod", "seagull"}) {
		t.Errorf("Pruned = %q", result.Pruned)
	}
	if result.PrunedCounts["lingcod"] != 1 || result.PrunedCounts["seagull"] != 1 {
		t.Errorf("PrunedCounts = %v", result.PrunedCounts)
	}
	if result.Tree.Child("reef squid") == nil {
		t.Errorf("allow-listed key was pruned: %q", result.Tree.Keys())
	}
}

func TestBuildVariousAndAdult(t *testing.T) {
	b := newBuilder(nil)
	b.threshold = 0
	result := b.Build(images("2021-05-01 Fort Ward",
		"Copper Rockfish", "Juvenile Copper Rockfish", "Rockfish", "Black Rockfish",
	))

	// fish/rock holds data and children copper, black; copper has data and juvenile
	rock := result.Tree.Child("rock fish")
	if rock == nil {
		t.Fatalf("Keys() = %q, expected rock fish", result.Tree.Keys())
	}
	if got := rock.Keys(); !reflect.DeepEqual(got, []string{"black", "copper", "various"}) {
		t.Errorf("rock fish keys = %q", got)
	}
	if got := rock.Child("copper").Keys(); !reflect.DeepEqual(got, []string{"adult", "juvenile"}) {
		t.Errorf("copper keys = %q", got)
	}
}

func TestBuildUnnest(t *testing.T) {
	resolver := fakeResolver{
		"staghorn coral":       {"staghorn coral", "Acropora cervicornis"},
		"fused staghorn coral": {"fused staghorn coral", "Acropora prolifera"},
		"elkhorn coral":        {"elkhorn coral", "Acropora palmata"},
	}
	b := newBuilder(resolver)
	b.threshold = 0
	result := b.Build(images("2021-05-01 Salt Pier",
		"Staghorn Coral", "Fused Staghorn Coral", "Elkhorn Coral",
	))

	coral := result.Tree.Child("coral")
	if coral == nil {
		t.Fatalf("Keys() = %q", result.Tree.Keys())
	}
	expected := []string{"elkhorn", "fused staghorn", "staghorn"}
	if got := coral.Keys(); !reflect.DeepEqual(got, expected) {
		t.Errorf("coral keys = %q, expected %q", got, expected)
	}
	if coral.Child("staghorn").HasChildren() {
		t.Errorf("staghorn still has children")
	}

	index := Index(result.Tree, resolver)
	for _, name := range []string{"staghorn coral", "fused staghorn coral", "elkhorn coral"} {
		if len(index[name]) != 1 {
			t.Errorf("index[%q] has %d images, expected 1", name, len(index[name]))
		}
	}
}

func TestCompleteSpecies(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Animalia Cnidaria Acropora cervicornis", true},
		{"Animalia Mollusca Octopus sp.", false},
		{"Animalia Chordata Haemulon", false},
		{"", false},
	}

	for _, tt := range tests {
		if result := CompleteSpecies(tt.input); result != tt.expected {
			t.Errorf("CompleteSpecies(%q) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestSubjects(t *testing.T) {
	b := newBuilder(nil)
	b.threshold = 0
	result := b.Build(images("2021-05-01 Fort Ward", "Copper Rockfish", "Goby"))

	var got []string
	for _, s := range Subjects(result.Tree) {
		got = append(got, s.Name)
	}
	expected := []string{"copper rock fish", "goby fish"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Subjects = %q, expected %q", got, expected)
	}
}

func TestSubjectTitle(t *testing.T) {
	b := newBuilder(nil)
	b.threshold = 0
	result := b.Build(images("2021-05-01 Fort Ward", "Rockfish", "Copper Rockfish"))

	var got []string
	for _, s := range Subjects(result.Tree) {
		got = append(got, s.Title())
	}
	expected := []string{"copper rock fish", "rock fish"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Titles = %q, expected %q", got, expected)
	}
}
