// Copyright 2025-2026 Meridian HQ

package gchat

import "errors"

// ErrRoomManagementUnsupported is returned by every room lifecycle
// operation. The upstream API offers no way for a bot to manage spaces; this
// is a permanent limitation, not a transient fault.
var ErrRoomManagementUnsupported = errors.New(
	"the Google Chat API does not support room management operations")

// JoinRoom is unsupported by the upstream API.
func (b *Bridge) JoinRoom(string) error { return ErrRoomManagementUnsupported }

// CreateRoom is unsupported by the upstream API.
func (b *Bridge) CreateRoom(string) error { return ErrRoomManagementUnsupported }

// LeaveRoom is unsupported by the upstream API.
func (b *Bridge) LeaveRoom(string) error { return ErrRoomManagementUnsupported }

// DestroyRoom is unsupported by the upstream API.
func (b *Bridge) DestroyRoom(string) error { return ErrRoomManagementUnsupported }

// InviteToRoom is unsupported by the upstream API.
func (b *Bridge) InviteToRoom(string, ...string) error { return ErrRoomManagementUnsupported }

// SetRoomTopic is unsupported by the upstream API.
func (b *Bridge) SetRoomTopic(string, string) error { return ErrRoomManagementUnsupported }

// JoinedRooms is unsupported by the upstream API.
func (b *Bridge) JoinedRooms() ([]Space, error) { return nil, ErrRoomManagementUnsupported }

// RoomExists is unsupported by the upstream API.
func (b *Bridge) RoomExists(string) (bool, error) { return false, ErrRoomManagementUnsupported }
