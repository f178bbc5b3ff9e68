package contact

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"laura-backend/internal/kv"
	"laura-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{
		Name:    "Mme Martin",
		Email:   "martin@example.fr",
		Phone:   "06 12 34 56 78",
		Area:    "Île-de-France",
		Message: "Bonjour, je cherche une aide ménagère.",
	}
}

func TestRequestValidation(t *testing.T) {
	v := validation.New()
	require.NoError(t, v.Struct(validRequest()))

	bad := validRequest()
	bad.Phone = "06.12.34"
	bad.Area = "Nice"
	bad.Email = "martin"
	errs := v.ValidationErrors(v.Struct(bad))
	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field()] = e.Tag()
	}
	assert.Equal(t, map[string]string{"Phone": "contactphone", "Area": "oneof", "Email": "email"}, tags)
}

func TestStoreAddAndList(t *testing.T) {
	mem := kv.NewMemory()
	s := NewStore(mem, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	first, err := s.Add(ctx, validRequest())
	require.NoError(t, err)
	req := validRequest()
	req.Name = "  M. Durand "
	second, err := s.Add(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "M. Durand", second.Name)

	items := s.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	require.NoError(t, mem.Set(ctx, StorageKey, "oops"))
	assert.Empty(t, s.List(ctx))
}
