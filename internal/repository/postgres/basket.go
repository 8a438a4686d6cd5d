package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// таймаут на одну операцию с хранилищем:
// корзина пишется по пути нажатия кнопки, долго ждать нельзя
const opTimeout = 3 * time.Second

// BasketRepository хранит состав корзины в PostgreSQL
// используется в киоск-режиме, когда одна корзина разделяется между устройствами
// контракт тот же, что у файлового хранилища: все операции best-effort,
// ошибки логируются и гасятся, источник истины — состояние в памяти
type BasketRepository struct {
	db  *pgxpool.Pool
	sq  squirrel.StatementBuilderType
	log *slog.Logger
}

// NewBasketRepository создает новый экземпляр репозитория
func NewBasketRepository(db *pgxpool.Pool, log *slog.Logger) *BasketRepository {
	return &BasketRepository{
		db: db,
		// плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: log,
	}
}

// Save перезаписывает список товаров корзины одной транзакцией:
// старые строки удаляются, новые вставляются с порядковыми номерами
func (r *BasketRepository) Save(key string, ids []string) {
	const op = "repository.postgres.BasketRepository.Save"
	log := r.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Warn("failed to begin transaction", slog.String("error", err.Error()))
		return
	}
	// гарантируем откат транзакции в случае любой ошибки
	defer tx.Rollback(ctx)

	sql, args, err := r.sq.Delete("basket_items").
		Where(squirrel.Eq{"basket_key": key}).
		ToSql()
	if err != nil {
		log.Warn("failed to build delete query", slog.String("error", err.Error()))
		return
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		log.Warn("failed to wipe basket rows", slog.String("error", err.Error()))
		return
	}

	for pos, id := range ids {
		sql, args, err := r.sq.Insert("basket_items").
			Columns("basket_key", "product_id", "position").
			Values(key, id, pos+1).
			ToSql()
		if err != nil {
			log.Warn("failed to build insert query", slog.String("error", err.Error()))
			return
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			log.Warn("failed to insert basket row",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Warn("failed to commit basket", slog.String("error", err.Error()))
	}
}

// Load возвращает список id в сохранённом порядке
// при любой ошибке возвращается пустой список — корзина просто начнётся заново
func (r *BasketRepository) Load(key string) []string {
	const op = "repository.postgres.BasketRepository.Load"
	log := r.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sql, args, err := r.sq.Select("product_id").
		From("basket_items").
		Where(squirrel.Eq{"basket_key": key}).
		OrderBy("position").
		ToSql()
	if err != nil {
		log.Warn("failed to build select query", slog.String("error", err.Error()))
		return []string{}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		log.Warn("failed to query basket rows", slog.String("error", err.Error()))
		return []string{}
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Warn("failed to scan basket row", slog.String("error", err.Error()))
			return []string{}
		}
		ids = append(ids, id)
	}
	return ids
}

// Clear удаляет все строки корзины под ключом key
func (r *BasketRepository) Clear(key string) {
	const op = "repository.postgres.BasketRepository.Clear"
	log := r.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sql, args, err := r.sq.Delete("basket_items").
		Where(squirrel.Eq{"basket_key": key}).
		ToSql()
	if err != nil {
		log.Warn("failed to build delete query", slog.String("error", err.Error()))
		return
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		log.Warn("failed to clear basket", slog.String("error", err.Error()))
	}
}
