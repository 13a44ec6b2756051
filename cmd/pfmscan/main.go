// cmd/pfmscan/main.go
package main

import (
	"github.com/cskokgibbs/gimmemotifs/internal/app"
	"github.com/cskokgibbs/gimmemotifs/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
