// Package migrations содержит встроенные SQL-миграции схем всех сервисов.
package migrations

import "embed"

// Orders миграции схемы сервиса заказов.
//
//go:embed orders/*.sql
var Orders embed.FS

// Products миграции схемы сервиса каталога.
//
//go:embed products/*.sql
var Products embed.FS

// Notifications миграции схемы сервиса уведомлений.
//
//go:embed notifications/*.sql
var Notifications embed.FS
