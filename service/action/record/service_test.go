package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/cardstore"
)

func TestService_Save(t *testing.T) {
	cards := cardstore.New()
	service := New(cards, actionlog.New())

	method, err := service.Method("save")
	assert.Nil(t, err)

	output := &SaveOutput{}
	err = method(context.Background(), &SaveInput{
		UserID: "u1",
		Data:   map[string]interface{}{"title": "Going Deep"},
	}, output)
	assert.Nil(t, err)
	assert.NotEmpty(t, output.CardID)

	card, _ := cards.Load(context.Background(), output.CardID)
	if assert.NotNil(t, card) {
		assert.Equal(t, cardstore.ActionTypeInfo, card.ActionType)
		assert.Equal(t, "Going Deep", card.ActionData["title"])
	}
}

func TestService_Log(t *testing.T) {
	log := actionlog.New()
	service := New(cardstore.New(), log)

	method, err := service.Method("log")
	assert.Nil(t, err)

	output := &LogOutput{}
	err = method(context.Background(), &LogInput{
		Kind:      string(actionlog.KindExecuted),
		SkillName: "url-extract",
		UserID:    "u1",
	}, output)
	assert.Nil(t, err)
	assert.NotEmpty(t, output.ID)

	entries, _ := log.List(context.Background(), &actionlog.Filter{SkillName: "url-extract"})
	assert.Equal(t, 1, len(entries))
}
