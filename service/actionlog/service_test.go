package actionlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func backends(t *testing.T) map[string]Service {
	sqlite, _, err := OpenSQLite(fmt.Sprintf("file:%s/actionlog.db", t.TempDir()))
	assert.Nil(t, err)
	return map[string]Service{
		"memory": New(),
		"sqlite": sqlite,
	}
}

func TestService_AppendAndList(t *testing.T) {
	for name, service := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Nil(t, service.Append(ctx, &Entry{Kind: KindMatched, SkillName: "url-extract", UserID: "u1"}))
			assert.Nil(t, service.Append(ctx, &Entry{Kind: KindExecuted, SkillName: "url-extract", UserID: "u1"}))
			assert.Nil(t, service.Append(ctx, &Entry{
				Kind:      KindFailed,
				SkillName: "note-capture",
				UserID:    "u2",
				Error:     "boom",
				Detail:    map[string]interface{}{"step": "fetch"},
			}))

			all, err := service.List(ctx, nil)
			assert.Nil(t, err)
			if assert.Equal(t, 3, len(all)) {
				// oldest first, ids assigned
				assert.Equal(t, KindMatched, all[0].Kind)
				assert.NotEmpty(t, all[0].ID)
				assert.False(t, all[0].CreatedAt.IsZero())
			}

			bySkill, err := service.List(ctx, &Filter{SkillName: "url-extract"})
			assert.Nil(t, err)
			assert.Equal(t, 2, len(bySkill))

			byKind, err := service.List(ctx, &Filter{Kind: KindFailed})
			assert.Nil(t, err)
			if assert.Equal(t, 1, len(byKind)) {
				assert.Equal(t, "boom", byKind[0].Error)
				assert.Equal(t, "fetch", byKind[0].Detail["step"])
			}

			limited, err := service.List(ctx, &Filter{UserID: "u1", Limit: 1})
			assert.Nil(t, err)
			assert.Equal(t, 1, len(limited))
		})
	}
}
