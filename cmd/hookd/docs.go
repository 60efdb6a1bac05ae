package main

// General API documentation for swaggo. Regenerate with
// `swag init -g cmd/hookd/docs.go -o docs`.
//
// @title           hookd API
// @version         1.0
// @description     Model serving pipeline with lifecycle callbacks.
//
// @contact.name   hookd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
