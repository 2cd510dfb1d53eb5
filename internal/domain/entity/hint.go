package entity

// Типы подсказок. Ментор — бесплатная авто-подсказка из активной покупки
// mentor_mode; остальные оплачиваются очками.
const (
	HintMentor     = "mentor"
	HintDisableOne = "disable_1"
	HintDisableTwo = "disable_2"
	HintTimeBoost  = "time_boost"
)

// Фиксированные цены подсказок в очках
const (
	HintDisableOneCost = 2
	HintDisableTwoCost = 5
	HintTimeBoostCost  = 5
)

// TimeBoostSeconds — сколько секунд добавляет подсказка time_boost
const TimeBoostSeconds = 10

// HintCost возвращает цену подсказки. Ментор бесплатен.
func HintCost(hintType string) int {
	switch hintType {
	case HintDisableOne:
		return HintDisableOneCost
	case HintDisableTwo:
		return HintDisableTwoCost
	case HintTimeBoost:
		return HintTimeBoostCost
	default:
		return 0
	}
}

// HintUsage — эфемерная запись об использованной подсказке в рамках
// (матч, вопрос, пользователь). Хранится в Redis, а не в Postgres:
// живёт не дольше самого матча.
type HintUsage struct {
	HintType        string `json:"hint_type"`
	DisabledOptions []int  `json:"disabled_options,omitempty"`
	ExtraSeconds    int    `json:"extra_seconds,omitempty"`
}
