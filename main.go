package main

import "github.com/cosmic-canvas/canvas-api/cmd"

// @title           Cosmic Canvas API
// @version         1.0.0
// @description     Annotation and PDF export service for deep-zoom imagery
// @contact.name    API Support
// @contact.url     https://github.com/cosmic-canvas/canvas-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
