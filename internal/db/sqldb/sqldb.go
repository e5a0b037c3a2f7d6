// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thomascanham/wedding/internal/db"
	"github.com/thomascanham/wedding/internal/model"
)

var ErrMigrationFailed = errors.New("failed to migrate")

// OpenSQLite opens the database file at path. sqlite allows a single writer,
// so the pool is limited to one connection.
func OpenSQLite(path string) (*Store, error) {
	s, err := Open(sqlite.Open(path))
	if err != nil {
		return nil, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		s.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

func OpenPostgres(dsn string) (*Store, error) {
	return Open(postgres.Open(dsn))
}

// Open connects through the given dialector and migrates the schema.
func Open(dialector gorm.Dialector) (*Store, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	s := &Store{db: gdb}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Store implements db.Gateway on top of gorm.
type Store struct {
	db *gorm.DB
}

var _ db.Gateway = (*Store)(nil)

func (s *Store) Migrate() error {
	for _, m := range []any{
		&guestRow{},
		&inviteRow{},
		&roomRow{},
		&inviteGuestRow{},
		&roomGuestRow{},
	} {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("%w: %T: %w", ErrMigrationFailed, m, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.ErrNotFound
	}
	return err
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

func (s *Store) CreateGuest(ctx context.Context, guest *model.Guest) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		guest.ID = uuid.New()
	}
	stamp(&guest.Created, &guest.Updated)

	if err := s.db.WithContext(ctx).Create(toGuestRow(guest)).Error; err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return guest.ID, nil
}

func (s *Store) UpdateGuest(ctx context.Context, id uuid.UUID, patch model.GuestPatch) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateGuest")
	defer span.End()

	var res *model.Guest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row guestRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		res = row.toModel()
		patch.Apply(res, time.Now().UTC())
		return tx.Save(toGuestRow(res)).Error
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

func (s *Store) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&guestRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		for _, e := range []model.EntityType{model.EntityInviteGuest, model.EntityRoomGuest} {
			if err := tx.Table(string(e)).Where("guest_id = ?", id).Delete(&linkRow{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *Store) ListGuests(ctx context.Context) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListGuests")
	defer span.End()

	var rows []guestRow
	if err := s.db.WithContext(ctx).Order("created, id").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}
	res := make([]*model.Guest, 0, len(rows))
	for i := range rows {
		res = append(res, rows[i].toModel())
	}
	return res, nil
}

func (s *Store) GetGuestByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	var row guestRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (s *Store) GetGuestsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestsByIDs")
	defer span.End()

	res := make([]*model.Guest, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var rows []guestRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}
	byID := make(map[uuid.UUID]*guestRow, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			res = append(res, row.toModel())
		}
	}
	return res, nil
}

func (s *Store) CreateInvite(ctx context.Context, inv *model.Invite) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateInvite")
	defer span.End()

	if inv.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		inv.ID = uuid.New()
	}
	stamp(&inv.Created, &inv.Updated)

	if err := s.db.WithContext(ctx).Create(toInviteRow(inv)).Error; err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return inv.ID, nil
}

func (s *Store) UpdateInvite(ctx context.Context, id uuid.UUID, patch model.InvitePatch) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateInvite")
	defer span.End()

	var res *model.Invite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row inviteRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		res = row.toModel()
		patch.Apply(res, time.Now().UTC())
		return tx.Save(toInviteRow(res)).Error
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

func (s *Store) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteInvite")
	defer span.End()

	err := s.deleteParent(ctx, &inviteRow{}, model.EntityInviteGuest, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *Store) ListInvites(ctx context.Context) ([]*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListInvites")
	defer span.End()

	var rows []inviteRow
	if err := s.db.WithContext(ctx).Order("created, id").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}
	res := make([]*model.Invite, 0, len(rows))
	for i := range rows {
		res = append(res, rows[i].toModel())
	}
	return res, nil
}

func (s *Store) GetInviteByID(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetInviteByID")
	defer span.End()

	var row inviteRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (s *Store) CreateRoom(ctx context.Context, room *model.Room) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateRoom")
	defer span.End()

	if room.ID == uuid.Nil {
		span.AddEvent("uuid is nil, generate a new id")
		room.ID = uuid.New()
	}
	stamp(&room.Created, &room.Updated)

	if err := s.db.WithContext(ctx).Create(toRoomRow(room)).Error; err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	return room.ID, nil
}

func (s *Store) UpdateRoom(ctx context.Context, id uuid.UUID, patch model.RoomPatch) (*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateRoom")
	defer span.End()

	var res *model.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomRow
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		res = row.toModel()
		patch.Apply(res, time.Now().UTC())
		return tx.Save(toRoomRow(res)).Error
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteRoom")
	defer span.End()

	err := s.deleteParent(ctx, &roomRow{}, model.EntityRoomGuest, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *Store) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListRooms")
	defer span.End()

	var rows []roomRow
	if err := s.db.WithContext(ctx).Order("created, id").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}
	res := make([]*model.Room, 0, len(rows))
	for i := range rows {
		res = append(res, rows[i].toModel())
	}
	return res, nil
}

func (s *Store) GetRoomByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetRoomByID")
	defer span.End()

	var row roomRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (s *Store) deleteParent(ctx context.Context, parent any, links model.EntityType, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(parent, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		return tx.Table(string(links)).Where("parent_id = ?", id).Delete(&linkRow{}).Error
	})
}

func parentRow(parent model.EntityType) (any, model.EntityType, error) {
	switch parent {
	case model.EntityInvite:
		return &inviteRow{}, model.EntityInviteGuest, nil
	case model.EntityRoom:
		return &roomRow{}, model.EntityRoomGuest, nil
	}
	_, err := db.LinkEntity(parent)
	return nil, "", err
}

func (s *Store) ListLinks(ctx context.Context, parent model.EntityType, parentIDs []uuid.UUID) ([]model.Link, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListLinks")
	defer span.End()

	_, table, err := parentRow(parent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var rows []linkRow
	err = s.db.WithContext(ctx).
		Table(string(table)).
		Where("parent_id IN ?", parentIDs).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	byParent := make(map[uuid.UUID][]uuid.UUID, len(parentIDs))
	for _, r := range rows {
		byParent[r.ParentID] = append(byParent[r.ParentID], r.GuestID)
	}
	var res []model.Link
	for _, pid := range model.UniqueIDs(parentIDs) {
		for _, gid := range byParent[pid] {
			res = append(res, model.Link{ParentID: pid, GuestID: gid})
		}
	}
	return res, nil
}

func (s *Store) ReplaceLinks(ctx context.Context, parent model.EntityType, parentID uuid.UUID, guestIDs []uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ReplaceLinks")
	defer span.End()

	row, table, err := parentRow(parent)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(row).Where("id = ?", parentID).Update("updated", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		if err := tx.Table(string(table)).Where("parent_id = ?", parentID).Delete(&linkRow{}).Error; err != nil {
			return err
		}
		ids := model.UniqueIDs(guestIDs)
		if len(ids) == 0 {
			return nil
		}
		rows := make([]linkRow, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, linkRow{ParentID: parentID, GuestID: id})
		}
		return tx.Table(string(table)).Create(&rows).Error
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}
