// Package mcp provides an MCP (Model Context Protocol) server adapter for
// officepdf. It lets AI assistants convert local office documents to PDF.
package mcp

import "errors"

// ErrMissingConversionService is returned when the conversion service is not provided.
var ErrMissingConversionService = errors.New("mcp: conversion service is required")

// ErrHistoryDisabled is returned by history tools when no history service is configured.
var ErrHistoryDisabled = errors.New("mcp: conversion history is disabled")
