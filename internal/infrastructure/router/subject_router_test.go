package router

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/logger"
)

type prefixHandler struct {
	prefix string
}

func (h prefixHandler) CanHandle(subject string) bool {
	return strings.HasPrefix(subject, h.prefix)
}

func (h prefixHandler) Process(context.Context, *entity.InboxMessage) ([]string, error) {
	return nil, nil
}

func TestGetHandlerReturnsFirstMatch(t *testing.T) {
	r := NewSubjectRouter(logger.NewNop())
	first := prefixHandler{prefix: "PASS"}
	second := prefixHandler{prefix: "PASSPORT"}
	r.Register(first)
	r.Register(second)

	assert.Equal(t, first, r.GetHandler("PASSPORT scans"))
	assert.Nil(t, r.GetHandler("invoice"))
}
