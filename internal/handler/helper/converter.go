package helper

// QuestionOption — вариант ответа в формате для клиента.
// Номер варианта (1..N) используется при отправке ответа.
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// BuildOptions нумерует варианты ответа с единицы
func BuildOptions(options []string) []QuestionOption {
	result := make([]QuestionOption, 0, len(options))
	for i, text := range options {
		result = append(result, QuestionOption{ID: i + 1, Text: text})
	}
	return result
}
