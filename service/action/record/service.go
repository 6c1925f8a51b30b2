// Package record is the persistence tool service: skills use it to save
// cards for the user and to append entries to the action log.
package record

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/skillet/model/types"
	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/cardstore"
)

const name = "record"

// Service writes skill outcomes to the card store and the action log.
type Service struct {
	cards cardstore.Service
	log   actionlog.Service
}

// New creates a new record service
func New(cards cardstore.Service, log actionlog.Service) *Service {
	return &Service{cards: cards, log: log}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "save",
			Description: "Saves an information card for the user.",
			Input:       reflect.TypeOf(&SaveInput{}),
			Output:      reflect.TypeOf(&SaveOutput{}),
		},
		{
			Name:        "log",
			Description: "Appends an entry to the action log.",
			Input:       reflect.TypeOf(&LogInput{}),
			Output:      reflect.TypeOf(&LogOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "save":
		return s.save, nil
	case "log":
		return s.appendLog, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

type SaveInput struct {
	UserID     string                 `json:"userId,omitempty"`
	ActionType string                 `json:"actionType,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

type SaveOutput struct {
	CardID string `json:"cardId"`
}

func (s *Service) save(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SaveInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SaveOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if s.cards == nil {
		return fmt.Errorf("card store was not configured")
	}
	actionType := cardstore.ActionType(input.ActionType)
	if actionType == "" {
		actionType = cardstore.ActionTypeInfo
	}
	card := &cardstore.Card{
		UserID:     input.UserID,
		ActionType: actionType,
		ActionData: input.Data,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return err
	}
	output.CardID = card.CardID
	return nil
}

type LogInput struct {
	Kind      string                 `json:"kind"`
	SkillName string                 `json:"skillName,omitempty"`
	UserID    string                 `json:"userId,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}

type LogOutput struct {
	ID string `json:"id"`
}

func (s *Service) appendLog(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*LogInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*LogOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if s.log == nil {
		return fmt.Errorf("action log was not configured")
	}
	entry := &actionlog.Entry{
		Kind:      actionlog.Kind(input.Kind),
		SkillName: input.SkillName,
		UserID:    input.UserID,
		Detail:    input.Detail,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		return err
	}
	output.ID = entry.ID
	return nil
}
