// Package repository implements the domain data-access contracts in SQL
// over the persistence adapter. Multi-statement operations run inside
// database.DB.WithinTransaction so a failure leaves no partial rows.
package repository

import "github.com/duynhne/room-service/internal/core/domain"

var (
	_ domain.UserRepository           = (*UserRepository)(nil)
	_ domain.SessionRepository        = (*SessionRepository)(nil)
	_ domain.RoomRepository           = (*RoomRepository)(nil)
	_ domain.InvitationCodeRepository = (*InvitationCodeRepository)(nil)
)
