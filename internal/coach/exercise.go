package coach

import (
	"maps"
	"slices"
)

// ExerciseInfo describes how to perform a menu exercise. Markdown is CommonMark.
type ExerciseInfo struct {
	Key      string
	Name     string
	Markdown string
}

//nolint:gochecknoglobals // static table.
var howTo = map[string]string{
	"cablecrunch": `膝立ちでロープを頭の横に構え、**背中を丸めて**おへそを覗き込むように下ろす。

1. 腰ではなくお腹で曲げる
2. 戻すときも腹筋の緊張を保つ`,
	"plank": `肘とつま先で体を支え、頭からかかとまで一直線に保つ。

- お尻を上げすぎない
- 呼吸は止めない`,
	"deadbug": `仰向けで手足を天井へ伸ばし、**対角の手足**をゆっくり床へ近づける。

- 腰を床に押し付けたまま行う`,
	"squat": `足を肩幅に開き、椅子に座るようにお尻を引いてしゃがむ。

1. 膝とつま先の向きをそろえる
2. 太ももが床と平行になるまで下ろす
3. かかとで押して立ち上がる`,
	"legpress": `シートに背中をつけ、足裏全体でプレートを押す。

- 膝を伸ばし切ってロックしない`,
	"lunge": `片足を大きく前に出し、両膝が90度になるまで沈む。

- 前膝がつま先より前に出すぎない
- 左右交互に行う`,
	"hipbridge": `仰向けで膝を立て、**お尻を締めながら**腰を持ち上げる。

- 肩から膝まで一直線で1秒止める`,
	"hipthrust": `ベンチに肩甲骨を乗せ、腰のバーを真上に押し上げる。

1. あごを引いたまま行う
2. 上でお尻を強く締める`,
	"abduction": `マシンに座り、膝の外側でパッドを外へ押し開く。

- 戻すときもゆっくり`,
	"dbcurl": `肘を体の横に固定し、ダンベルを肩へ巻き上げる。

- 反動を使わない`,
	"pushdown": `肘を脇に固定し、ロープを下へ押し切る。

- 肘から先だけを動かす`,
	"kneepushup": `膝をついた腕立て伏せ。胸を床に近づけてから押し戻す。

- 頭から膝まで一直線を保つ`,
	"deadlift": `バーを体に沿わせ、**背中をまっすぐ**保ったまま股関節から立ち上がる。

1. 軽めの重量でフォームを固める
2. 腰を丸めない`,
	"latpulldown": `胸を張り、バーを鎖骨へ向かって引き下ろす。

- 腕ではなく背中で引く意識`,
	"seatedrow": `背すじを伸ばして座り、ハンドルをお腹へ引く。

- 引き切ったら肩甲骨を寄せる`,
	"row": `ベンチに片手片膝をつき、ダンベルを腰へ引き上げる。

- 体をひねらない`,
	"ohp": `ダンベルを肩の高さに構え、真上へ押し上げる。

- 腰を反らせすぎない`,
	"mountain": `腕立ての姿勢から膝を胸へ交互に素早く引きつける。

- お尻が上下しないようにする`,
}

// Exercise returns the how-to of a menu exercise key.
func Exercise(key string) (ExerciseInfo, bool) {
	md, ok := howTo[key]
	if !ok {
		return ExerciseInfo{}, false //nolint:exhaustruct // not found.
	}
	name := key
	for _, area := range areaOrder {
		for _, c := range areaPool[area] {
			if c.Key == key {
				name = c.Name
			}
		}
	}
	return ExerciseInfo{Key: key, Name: name, Markdown: md}, true
}

// ExerciseKeys lists every key that has a how-to, sorted.
func ExerciseKeys() []string {
	return slices.Sorted(maps.Keys(howTo))
}
