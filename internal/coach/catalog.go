package coach

import (
	"slices"

	"github.com/myrjola/fitroadmap/internal/ptr"
)

// Tag marks what a candidate exercise requires.
type Tag string

const (
	TagGym         Tag = "gym"
	TagHeavy       Tag = "heavy"
	TagRunningLike Tag = "running-like"
	TagNoWeight    Tag = "no-weight"
)

// ExerciseKind classifies scheduled session exercises. The kind picks the minimum load and the base lift.
type ExerciseKind string

const (
	KindBench     ExerciseKind = "bench"
	KindSquat     ExerciseKind = "squat"
	KindDead      ExerciseKind = "dead"
	KindOHP       ExerciseKind = "ohp"
	KindRow       ExerciseKind = "row"
	KindPulldown  ExerciseKind = "pulldown"
	KindAccessory ExerciseKind = "accessory"
	KindStretch   ExerciseKind = "stretch"
)

// Candidate is a catalog exercise that can fill a menu or session slot.
type Candidate struct {
	Key   string
	Kind  ExerciseKind
	Name  string
	Tags  []Tag
	Sets  int
	Reps  int
	Ratio float64
	Notes string
}

// Bodyweight reports whether the candidate never gets a suggested weight.
func (c Candidate) Bodyweight() bool {
	return slices.Contains(c.Tags, TagNoWeight) || c.Ratio <= 0
}

// Suggest returns RoundToPlate(base × ratio). Bodyweight candidates and a missing base yield nil.
func (c Candidate) Suggest(base *float64) *float64 {
	if c.Bodyweight() || base == nil || !isFinite(*base) {
		return nil
	}
	return ptr.Ref(RoundToPlate(*base * c.Ratio))
}

// Eligible reports whether none of the candidate tags is excluded by barriers.
func Eligible(c Candidate, barriers []Barrier) bool {
	for _, b := range barriers {
		var forbidden Tag
		switch b {
		case BarrierNoGym:
			forbidden = TagGym
		case BarrierNoHeavy:
			forbidden = TagHeavy
		case BarrierNoRunning:
			forbidden = TagRunningLike
		case BarrierShortDurationOnly:
			continue
		}
		if slices.Contains(c.Tags, forbidden) {
			return false
		}
	}
	return true
}

// bodyweightCoefficients scale body weight into a starting load for menu exercises. Keys that are missing or
// map to 0 are bodyweight exercises.
//
//nolint:gochecknoglobals // static table.
var bodyweightCoefficients = map[string]float64{
	"squat":       0.35,
	"legpress":    0.45,
	"lunge":       0,
	"hipbridge":   0.10,
	"hipthrust":   0.35,
	"abduction":   0.15,
	"bench":       0.22,
	"chestpress":  0.25,
	"kneepushup":  0,
	"pushdown":    0.12,
	"deadlift":    0.30,
	"row":         0.25,
	"seatedrow":   0.22,
	"latpulldown": 0.20,
	"ohp":         0.12,
	"dbcurl":      0.08,
	"plank":       0,
	"deadbug":     0,
	"mountain":    0,
}

func areaCandidate(key, name string, tags ...Tag) Candidate {
	return Candidate{Key: key, Kind: "", Name: name, Tags: tags, Sets: 0, Reps: 0, Ratio: bodyweightCoefficients[key], Notes: ""}
}

//nolint:gochecknoglobals // static table.
var areaPool = map[Area][]Candidate{
	AreaAbs: {
		areaCandidate("cablecrunch", "ケーブルクランチ", TagGym),
		areaCandidate("plank", "プランク", TagNoWeight),
		areaCandidate("deadbug", "デッドバグ", TagNoWeight),
	},
	AreaLegs: {
		areaCandidate("squat", "スクワット（スミス可）", TagGym, TagHeavy),
		areaCandidate("legpress", "レッグプレス", TagGym),
		areaCandidate("lunge", "ランジ", TagNoWeight, TagRunningLike),
		areaCandidate("hipbridge", "ヒップリフト", TagNoWeight),
	},
	AreaHips: {
		areaCandidate("hipthrust", "ヒップスラスト（バーベル/スミス）", TagGym, TagHeavy),
		areaCandidate("abduction", "ヒップアブダクション", TagGym),
		areaCandidate("hipbridge", "ヒップリフト", TagNoWeight),
	},
	AreaArms: {
		areaCandidate("dbcurl", "ダンベルカール", TagGym),
		areaCandidate("pushdown", "トライセプスプレスダウン", TagGym),
		areaCandidate("kneepushup", "ニー・プッシュアップ", TagNoWeight),
	},
	AreaBack: {
		areaCandidate("deadlift", "デッドリフト（軽め）", TagGym, TagHeavy),
		areaCandidate("latpulldown", "ラットプルダウン", TagGym),
		areaCandidate("seatedrow", "シーテッドロー", TagGym),
	},
	AreaWhole: {
		areaCandidate("row", "ダンベルロウ", TagGym),
		areaCandidate("ohp", "ショルダープレス（ダンベル）", TagGym),
		areaCandidate("mountain", "マウンテンクライマー", TagNoWeight, TagRunningLike),
	},
}

// fallbackCandidate is used when barriers exclude every other candidate.
//
//nolint:gochecknoglobals // static value.
var fallbackCandidate = areaCandidate("hipbridge", "ヒップリフト", TagNoWeight)

// CandidatesForArea lists the menu candidates of area in preference order.
func CandidatesForArea(area Area) []Candidate {
	return slices.Clone(areaPool[area])
}

func alt(kind ExerciseKind, name string, sets, reps int, ratio float64, notes string) Candidate {
	var tags []Tag
	if ratio <= 0 {
		tags = []Tag{TagNoWeight}
	}
	return Candidate{Key: string(kind), Kind: kind, Name: name, Tags: tags, Sets: sets, Reps: reps, Ratio: ratio, Notes: notes}
}

//nolint:gochecknoglobals // static table.
var liftAlternatives = map[ExerciseKind][]Candidate{
	KindBench: {
		alt(KindBench, "Dumbbell Bench Press", 4, 8, 0.6, "ベンチの約60%"),
		alt(KindAccessory, "Machine Chest Press", 4, 10, 0.55, "ベンチの約55%"),
		alt(KindAccessory, "Incline DB Press", 3, 10, 0.5, ""),
		alt(KindAccessory, "Cable Fly", 3, 12, 0.25, ""),
	},
	KindSquat: {
		alt(KindAccessory, "Leg Press", 4, 10, 1.6, "プレート総重量として"),
		alt(KindAccessory, "Goblet Squat", 4, 10, 0.5, ""),
		alt(KindAccessory, "Hack Squat", 4, 8, 1.1, ""),
		alt(KindAccessory, "Front Squat", 3, 5, 0.7, ""),
	},
	KindDead: {
		alt(KindDead, "Trap Bar Deadlift", 3, 5, 1.05, ""),
		alt(KindDead, "Romanian Deadlift", 3, 8, 0.7, ""),
		alt(KindAccessory, "Back Extension (Plate)", 3, 12, 0.3, ""),
		alt(KindRow, "Barbell Row", 4, 8, 0.55, "デッドの~55%"),
	},
	KindOHP: {
		alt(KindOHP, "Dumbbell Shoulder Press", 3, 10, 0.6, ""),
		alt(KindAccessory, "Machine Shoulder Press", 4, 10, 0.55, ""),
		alt(KindAccessory, "Lateral Raise (Pair Total)", 3, 15, 0.25, ""),
	},
	KindRow: {
		alt(KindRow, "Seated Cable Row", 4, 10, 0.5, ""),
		alt(KindRow, "Chest-supported Row", 4, 10, 0.45, ""),
		alt(KindPulldown, "Lat Pulldown", 3, 10, 0.45, ""),
	},
	KindPulldown: {
		alt(KindPulldown, "Assisted Pull-up", 4, 6, 0.45, "補助量は適宜調整"),
		alt(KindRow, "Seated Row", 4, 10, 0.5, ""),
		alt(KindAccessory, "Straight-Arm Pulldown", 3, 12, 0.25, ""),
	},
	KindAccessory: {
		alt(KindAccessory, "Face Pull", 3, 15, 0.2, ""),
		alt(KindAccessory, "Leg Extension", 3, 12, 0.3, ""),
		alt(KindAccessory, "Leg Curl", 3, 12, 0.35, ""),
		alt(KindAccessory, "Calf Raise", 3, 15, 0.3, ""),
	},
	KindStretch: {
		alt(KindStretch, "Child's Pose", 2, 45, 0, "呼吸を深く"),
		alt(KindStretch, "Doorway Chest Stretch", 2, 30, 0, ""),
		alt(KindStretch, "Cat & Cow", 2, 10, 0, ""),
	},
}

// CandidatesForPrimaryLift lists the alternatives for a scheduled exercise of kind. The ratio of each
// alternative applies to the base load of the exercise it replaces.
func CandidatesForPrimaryLift(kind ExerciseKind) []Candidate {
	return slices.Clone(liftAlternatives[kind])
}
