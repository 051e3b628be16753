package rendering

import (
	"bytes"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
)

// componentNode is the structural interface gomponents.Node satisfies.
type componentNode interface {
	Render(w io.Writer) error
}

// Renderer turns components into HTML, either as a full page response or as
// bytes for fragments.
type Renderer interface {
	RenderComponent(component any) ([]byte, error)
	RenderPage(c echo.Context, status int, component any) error
}

// ComponentRenderer is the gomponents-backed Renderer.
type ComponentRenderer struct{}

// NewComponentRenderer creates a new ComponentRenderer.
func NewComponentRenderer() *ComponentRenderer {
	return &ComponentRenderer{}
}

func (r *ComponentRenderer) render(component any, w io.Writer) error {
	node, ok := component.(componentNode)
	if !ok {
		return fmt.Errorf("unsupported component type %T", component)
	}
	return node.Render(w)
}

// RenderComponent renders a component to bytes, for HTMX fragments.
func (r *ComponentRenderer) RenderComponent(component any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.render(component, &buf); err != nil {
		return nil, fmt.Errorf("failed to render component: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage streams a component as a full HTML response.
func (r *ComponentRenderer) RenderPage(c echo.Context, status int, component any) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return r.render(component, c.Response().Writer)
}
