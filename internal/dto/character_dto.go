package dto

type CharacterResponse struct {
	Name     string   `json:"name"`
	Race     string   `json:"race"`
	Greeting string   `json:"greeting"`
	Quotes   []string `json:"quotes"`
}
