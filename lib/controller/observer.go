// Copyright 2026 The QNetCtl Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"log/slog"

	"github.com/qnetctl/qnetctl/lib/reconcile"
)

// logObserver records view changes as structured log records. Entries
// that survived a rebuild unchanged are not logged.
type logObserver struct {
	logger *slog.Logger
}

func (o logObserver) Added(network reconcile.Network) {
	o.logger.Info("network added", networkAttrs(network)...)
}

func (o logObserver) Updated(previous, current reconcile.Network) {
	if previous.Connection == current.Connection {
		return
	}
	o.logger.Info("network updated", networkAttrs(current)...)
}

func (o logObserver) Removed(network reconcile.Network) {
	o.logger.Info("network removed", networkAttrs(network)...)
}

func networkAttrs(network reconcile.Network) []any {
	attrs := []any{
		"id", network.ID,
		"name", network.DisplayName(),
		"type", network.Type.String(),
		"quality", network.Quality,
	}
	if network.Interface != "" {
		attrs = append(attrs, "interface", network.Interface)
	}
	if network.Active {
		attrs = append(attrs, "active", true)
	}
	if network.AutoConnect {
		attrs = append(attrs, "autoconnect", true)
	}
	return attrs
}
