package web

import "embed"

// StaticFiles embeds the web/static directory into the binary.
//
//go:embed static/*
var StaticFiles embed.FS
