// Миграции вшиты в бинарь и применяются при старте postgres-бекенда.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
