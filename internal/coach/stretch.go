package coach

import "slices"

// StretchWhen says when in the day a stretch belongs.
type StretchWhen string

const (
	StretchWarmup   StretchWhen = "warmup"
	StretchCooldown StretchWhen = "cooldown"
	StretchRest     StretchWhen = "rest"
)

// Stretch is a timed mobility exercise.
type Stretch struct {
	Key     string      `json:"key"     yaml:"key"`
	Name    string      `json:"name"    yaml:"name"`
	When    StretchWhen `json:"when"    yaml:"when"`
	Seconds int         `json:"seconds" yaml:"seconds"`
	HowTo   string      `json:"howTo"   yaml:"howTo"`
}

//nolint:gochecknoglobals // static table.
var stretches = []Stretch{
	{Key: "hip_circle", Name: "ヒップサークル", When: StretchWarmup, Seconds: 30, HowTo: "股関節を大きく回す"},
	{Key: "arm_circle", Name: "アームサークル", When: StretchWarmup, Seconds: 30, HowTo: "肩関節を前後に回す"},
	{Key: "inchworm", Name: "インチワーム", When: StretchWarmup, Seconds: 30, HowTo: "前屈→歩手→戻るを繰り返し"},
	{Key: "hamstring", Name: "ハムストリングストレッチ", When: StretchCooldown, Seconds: 40, HowTo: "前屈で太もも裏を伸ばす"},
	{Key: "quad", Name: "クワッドストレッチ", When: StretchCooldown, Seconds: 40, HowTo: "立位で片足を持ち太もも前"},
	{Key: "pec_door", Name: "ドアストレッチ（胸）", When: StretchCooldown, Seconds: 40, HowTo: "腕を柱につけ胸をひらく"},
	{Key: "cat_cow", Name: "キャット&カウ", When: StretchRest, Seconds: 60, HowTo: "背中を丸めて反らすを繰返し"},
	{Key: "child_pose", Name: "チャイルドポーズ", When: StretchRest, Seconds: 60, HowTo: "お尻を踵に、腕前方へ"},
	{Key: "glute_pir", Name: "梨状筋ストレッチ", When: StretchRest, Seconds: 60, HowTo: "仰向けで足をかけ膝を引き寄せ"},
}

// Stretches lists the stretches for when in catalog order.
func Stretches(when StretchWhen) []Stretch {
	var out []Stretch
	for _, s := range stretches {
		if s.When == when {
			out = append(out, s)
		}
	}
	return slices.Clip(out)
}
