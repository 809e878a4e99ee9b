package pipeline

import (
	"context"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
)

// Editor changes the facial expression of the person in an image.
type Editor interface {
	EditExpression(ctx context.Context, image []byte, mimeType string, expr domain.ExpressionVector) ([]byte, error)
}

// EditorFunc adapts a plain function to Editor.
type EditorFunc func(ctx context.Context, image []byte, mimeType string, expr domain.ExpressionVector) ([]byte, error)

func (f EditorFunc) EditExpression(ctx context.Context, image []byte, mimeType string, expr domain.ExpressionVector) ([]byte, error) {
	return f(ctx, image, mimeType, expr)
}

// Passthrough returns the image unchanged.
var Passthrough = EditorFunc(func(_ context.Context, image []byte, _ string, _ domain.ExpressionVector) ([]byte, error) {
	return image, nil
})
