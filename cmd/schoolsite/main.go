// cmd/schoolsite/main.go
package main

import (
	"context"

	"github.com/dalemusser/waffle/app"
	"github.com/schoolworks/schoolsite/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
