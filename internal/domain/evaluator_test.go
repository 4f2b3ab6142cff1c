package domain

import (
	"math"
	"testing"
)

func TestEmptyCellsEvaluator(t *testing.T) {
	ev := &EmptyCellsEvaluator{}

	g := mustGrid(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	if score := ev.Evaluate(g); score != 15 {
		t.Errorf("expected 15 empty cells, got %f", score)
	}
}

func TestCornerBonusEvaluator(t *testing.T) {
	ev := &CornerBonusEvaluator{}

	// 角に最大値
	cornerGrid := mustGrid(t, [][]int{
		{16, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	if ev.Evaluate(cornerGrid) != 1.0 {
		t.Error("expected corner bonus 1.0")
	}

	// 角以外に最大値
	nonCornerGrid := mustGrid(t, [][]int{
		{2, 16, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	if ev.Evaluate(nonCornerGrid) != 0.0 {
		t.Error("expected corner bonus 0.0")
	}

	// 5x5の右下
	bigGrid := mustGrid(t, [][]int{
		{2, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 64},
	})
	if ev.Evaluate(bigGrid) != 1.0 {
		t.Error("expected corner bonus 1.0 on 5x5")
	}
}

func TestSmoothnessEvaluator(t *testing.T) {
	ev := &SmoothnessEvaluator{}

	smoothGrid := mustGrid(t, [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	roughGrid := mustGrid(t, [][]int{
		{2, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	smoothScore := ev.Evaluate(smoothGrid)
	roughScore := ev.Evaluate(roughGrid)

	if smoothScore <= roughScore {
		t.Errorf("smooth grid should have higher score: smooth=%f, rough=%f", smoothScore, roughScore)
	}
}

func TestMonotonicityEvaluator(t *testing.T) {
	ev := &MonotonicityEvaluator{}

	monoGrid := mustGrid(t, [][]int{
		{16, 8, 4, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	nonMonoGrid := mustGrid(t, [][]int{
		{2, 16, 4, 8},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	monoScore := ev.Evaluate(monoGrid)
	nonMonoScore := ev.Evaluate(nonMonoGrid)

	if monoScore <= nonMonoScore {
		t.Errorf("monotonic grid should have higher score: mono=%f, nonMono=%f", monoScore, nonMonoScore)
	}
}

func TestSnakeWeights(t *testing.T) {
	expected := [][]float64{
		{15, 14, 13, 12},
		{8, 9, 10, 11},
		{7, 6, 5, 4},
		{0, 1, 2, 3},
	}
	got := snakeWeights(4)
	for r := range expected {
		for c := range expected[r] {
			if got[r][c] != expected[r][c] {
				t.Fatalf("snakeWeights(4) = %v, want %v", got, expected)
			}
		}
	}
}

func TestSnakePatternEvaluator(t *testing.T) {
	ev := &SnakePatternEvaluator{}

	snakeGrid := mustGrid(t, [][]int{
		{2048, 1024, 512, 256},
		{16, 32, 64, 128},
		{8, 4, 2, 0},
		{0, 0, 0, 0},
	})
	scattered := mustGrid(t, [][]int{
		{2, 0, 16, 0},
		{0, 2048, 0, 4},
		{256, 0, 8, 0},
		{0, 32, 0, 1024},
	})

	score := ev.Evaluate(snakeGrid)
	if score <= 0 {
		t.Errorf("snake pattern grid should have positive score, got %f", score)
	}
	if score <= ev.Evaluate(scattered) {
		t.Error("snake pattern grid should beat a scattered grid")
	}
}

func TestMergeableEvaluator(t *testing.T) {
	ev := &MergeableEvaluator{}

	g := mustGrid(t, [][]int{
		{2, 2, 4},
		{0, 8, 4},
		{0, 8, 0},
	})

	// (0,0)-(0,1), (0,2)-(1,2), (1,1)-(2,1)
	if score := ev.Evaluate(g); score != 3 {
		t.Errorf("expected 3 mergeable pairs, got %f", score)
	}
}

func TestMaxTileEvaluator(t *testing.T) {
	ev := &MaxTileEvaluator{}

	if score := ev.Evaluate(mustGrid(t, [][]int{{0, 0}, {0, 0}})); score != 0 {
		t.Errorf("expected 0 for empty grid, got %f", score)
	}
	if score := ev.Evaluate(mustGrid(t, [][]int{{2, 0}, {0, 256}})); score != 8 {
		t.Errorf("expected log2(256)=8, got %f", score)
	}
}

func TestLargestTilePotentialEvaluator(t *testing.T) {
	ev := &LargestTilePotentialEvaluator{}

	cornered := mustGrid(t, [][]int{
		{256, 128, 64, 32},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	centered := mustGrid(t, [][]int{
		{32, 0, 0, 0},
		{0, 256, 0, 0},
		{0, 0, 128, 0},
		{0, 0, 0, 64},
	})

	if ev.Evaluate(cornered) <= ev.Evaluate(centered) {
		t.Error("largest tile in a corner should score higher")
	}
	if ev.Evaluate(mustGrid(t, [][]int{{0, 0}, {0, 0}})) != 0 {
		t.Error("expected 0 for empty grid")
	}
}

func TestWeightedEvaluator(t *testing.T) {
	evaluators := []Evaluator{
		&EmptyCellsEvaluator{},
		&CornerBonusEvaluator{},
	}
	weights := []float64{1.0, 10.0}

	wev := NewWeightedEvaluator(evaluators, weights)

	g := mustGrid(t, [][]int{
		{16, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	// 15 empty cells * 1.0 + corner bonus 1.0 * 10.0 = 25.0
	expected := 15.0*1.0 + 1.0*10.0
	if score := wev.Evaluate(g); score != expected {
		t.Errorf("expected %f, got %f", expected, score)
	}
}

func TestParseEvaluatorKind(t *testing.T) {
	tests := []struct {
		input   string
		want    EvaluatorKind
		wantErr bool
	}{
		{"largest", EvaluatorLargest, false},
		{" Snake ", EvaluatorSnake, false},
		{"WEIGHTED", EvaluatorWeighted, false},
		{"mergeable", EvaluatorMergeable, false},
		{"random", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEvaluatorKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEvaluatorKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEvaluatorKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewEvaluator(t *testing.T) {
	g := mustGrid(t, [][]int{
		{16, 16, 0},
		{2, 0, 0},
		{0, 0, 0},
	})

	tests := []struct {
		kind EvaluatorKind
		want Evaluator
	}{
		{EvaluatorLargest, &LargestTilePotentialEvaluator{}},
		{EvaluatorSnake, &SnakePatternEvaluator{}},
		{EvaluatorEmpty, &EmptyCellsEvaluator{}},
		{EvaluatorMonotonicity, &MonotonicityEvaluator{}},
		{EvaluatorSmoothness, &SmoothnessEvaluator{}},
		{EvaluatorCorner, &CornerBonusEvaluator{}},
		{EvaluatorMaxTile, &MaxTileEvaluator{}},
		{EvaluatorMergeable, &MergeableEvaluator{}},
	}

	for _, tt := range tests {
		ev, err := NewEvaluator(tt.kind, nil)
		if err != nil {
			t.Errorf("NewEvaluator(%q): %v", tt.kind, err)
			continue
		}
		if got, want := ev.Evaluate(g), tt.want.Evaluate(g); got != want {
			t.Errorf("NewEvaluator(%q).Evaluate = %f, want %f", tt.kind, got, want)
		}
	}

	if _, err := NewEvaluator("random", nil); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNewEvaluatorWeighted(t *testing.T) {
	g := mustGrid(t, [][]int{
		{16, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	ev, err := NewEvaluator(EvaluatorWeighted, map[EvaluatorKind]float64{
		EvaluatorEmpty:  1.0,
		EvaluatorCorner: 10.0,
		EvaluatorSnake:  0,
	})
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	if score := ev.Evaluate(g); score != 25.0 {
		t.Errorf("expected 25.0, got %f", score)
	}

	// 係数未指定ならDefaultWeights
	def, err := NewEvaluator(EvaluatorWeighted, nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	want := 0.0
	for kind, w := range DefaultWeights() {
		part, _ := NewEvaluator(kind, nil)
		want += w * part.Evaluate(g)
	}
	if got := def.Evaluate(g); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f with default weights, got %f", want, got)
	}

	for _, weights := range []map[EvaluatorKind]float64{
		{EvaluatorWeighted: 1},
		{"random": 1},
		{EvaluatorEmpty: 0},
	} {
		if _, err := NewEvaluator(EvaluatorWeighted, weights); err == nil {
			t.Errorf("NewEvaluator(weighted, %v): expected error", weights)
		}
	}
}
