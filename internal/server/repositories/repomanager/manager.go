// Package repomanager hands out repositories bound to a concrete DB handle,
// so services can run the same repository code on *sql.DB or inside *sql.Tx.
package repomanager

import (
	"github.com/dmitrijs2005/shiftbook/internal/dbx"
	"github.com/dmitrijs2005/shiftbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/shiftbook/internal/server/repositories/shifts"
	"github.com/dmitrijs2005/shiftbook/internal/server/repositories/users"
)

// RepositoryManager builds repositories over the given handle.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Shifts(db dbx.DBTX) shifts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
