package web

import "embed"

// StaticFS holds the embedded single-page UI.
//
//go:embed static/*
var StaticFS embed.FS
