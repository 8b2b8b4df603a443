/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metadata tracks per-module log levels and caller-info settings.
package metadata

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/aries-didcomm-go/spi/log"
)

const defaultModuleName = ""

//nolint:gochecknoglobals
var (
	levels      = newModuleLevels()
	callerInfos = newCallerInfo()
)

// SetLevel sets the logging level for the given module. The root module ("") sets the default.
func SetLevel(module string, level log.Level) {
	levels.setLevel(module, level)
}

// GetLevel returns the logging level for the given module.
func GetLevel(module string) log.Level {
	return levels.getLevel(module)
}

// IsEnabledFor indicates whether the logging level is enabled for the given module.
func IsEnabledFor(module string, level log.Level) bool {
	return levels.isEnabledFor(module, level)
}

// ParseLevel returns the log level from the given string representation.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToUpper(level) {
	case "CRITICAL":
		return log.CRITICAL, nil
	case "ERROR":
		return log.ERROR, nil
	case "WARNING":
		return log.WARNING, nil
	case "INFO":
		return log.INFO, nil
	case "DEBUG":
		return log.DEBUG, nil
	default:
		return log.INFO, fmt.Errorf("invalid log level: %s", level)
	}
}

// ParseString returns the string representation of the given log level.
func ParseString(level log.Level) string {
	switch level {
	case log.CRITICAL:
		return "CRITICAL"
	case log.ERROR:
		return "ERROR"
	case log.WARNING:
		return "WARNING"
	case log.INFO:
		return "INFO"
	case log.DEBUG:
		return "DEBUG"
	default:
		return ""
	}
}

// ShowCallerInfo enables caller info for the given module and level.
func ShowCallerInfo(module string, level log.Level) {
	callerInfos.setShowCallerInfo(module, level, true)
}

// HideCallerInfo disables caller info for the given module and level.
func HideCallerInfo(module string, level log.Level) {
	callerInfos.setShowCallerInfo(module, level, false)
}

// IsCallerInfoEnabled indicates whether caller info is enabled for the given module and level.
func IsCallerInfoEnabled(module string, level log.Level) bool {
	return callerInfos.isShowCallerInfo(module, level)
}

type moduleLevels struct {
	mutex    sync.RWMutex
	levels   map[string]log.Level
	defLevel log.Level
}

func newModuleLevels() *moduleLevels {
	return &moduleLevels{levels: make(map[string]log.Level), defLevel: log.INFO}
}

func (m *moduleLevels) setLevel(module string, level log.Level) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if module == defaultModuleName {
		m.defLevel = level
		return
	}

	m.levels[module] = level
}

func (m *moduleLevels) getLevel(module string) log.Level {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	level, ok := m.levels[module]
	if !ok {
		return m.defLevel
	}

	return level
}

func (m *moduleLevels) isEnabledFor(module string, level log.Level) bool {
	return level <= m.getLevel(module)
}

type callerInfoKey struct {
	module string
	level  log.Level
}

type callerInfo struct {
	mutex       sync.RWMutex
	show        map[callerInfoKey]bool
	defaultShow bool
}

func newCallerInfo() *callerInfo {
	return &callerInfo{show: make(map[callerInfoKey]bool), defaultShow: true}
}

func (c *callerInfo) setShowCallerInfo(module string, level log.Level, enabled bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.show[callerInfoKey{module: module, level: level}] = enabled
}

func (c *callerInfo) isShowCallerInfo(module string, level log.Level) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	enabled, ok := c.show[callerInfoKey{module: module, level: level}]
	if !ok {
		return c.defaultShow
	}

	return enabled
}
