package service

import (
	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/pkg/character"
)

type ICharacterService interface {
	List() []dto.CharacterResponse
}

type characterService struct {
	registry *character.Registry
}

func NewCharacterService(registry *character.Registry) ICharacterService {
	return &characterService{registry: registry}
}

func (s *characterService) List() []dto.CharacterResponse {
	records := s.registry.All()
	out := make([]dto.CharacterResponse, len(records))
	for i, rec := range records {
		out[i] = dto.CharacterResponse{
			Name:     rec.Name,
			Race:     rec.Race,
			Greeting: rec.Greeting,
			Quotes:   rec.Quotes,
		}
	}
	return out
}
