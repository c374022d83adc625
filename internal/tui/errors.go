// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
)

func humanizeServerUnavailableError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, adapter.ErrUnavailable) || errors.Is(err, adapter.ErrBadGateway) {
		return "Отсутствует сеть или Сервер недоступен"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Отсутствует сеть или Сервер недоступен"
	}

	return err.Error()
}

// humanizeSyncError describes a failed sync. Pending edits are always kept,
// so the text says so.
func humanizeSyncError(err error) string {
	if err == nil {
		return ""
	}

	var syncErr *service.SyncError
	if errors.As(err, &syncErr) {
		return "Сервер отклонил правки (" + syncErr.Error() + "). Правки сохранены, можно исправить и повторить"
	}
	if errors.Is(err, service.ErrTransport) {
		return humanizeServerUnavailableError(err) + ". Правки сохранены, синхронизация будет повторена"
	}
	return err.Error()
}
