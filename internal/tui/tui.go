// Package tui holds the full-screen bubbletea views: the pomodoro timer and the today board.
package tui
