package tui

import "errors"

// ErrMissingOrchestrator is returned when the conversion orchestrator is not provided.
var ErrMissingOrchestrator = errors.New("tui: conversion orchestrator is required")

// ErrMissingSettingsService is returned when the settings service is not provided.
var ErrMissingSettingsService = errors.New("tui: settings service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
