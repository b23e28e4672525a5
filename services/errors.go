package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrLadderNotFound = errors.New("ladder not found")
	ErrBoxNotFound    = errors.New("box not found")
	ErrClubNotFound   = errors.New("club not found")

	// Запись результата. ErrDuplicateResult — сигнал идемпотентности:
	// вызывающая сторона вправе трактовать его как "уже применено".
	ErrDuplicateResult    = errors.New("match result already exists")
	ErrInvalidWinner      = errors.New("winner must be one of the match participants")
	ErrInvalidScoreFormat = errors.New("invalid set scores")
	ErrMatchNotPending    = errors.New("match is not pending")

	// Создание матчей
	ErrSamePlayer = errors.New("match players must be distinct")

	// Незавершённость / конфигурация сезона
	ErrSeasonNotBox           = errors.New("season is not a box season")
	ErrSeasonNotLadder        = errors.New("season is not a ladder season")
	ErrInvalidPromotionRule   = errors.New("promotion rule counts must be non-negative and smaller than tier size")
	ErrPromotionRuleNotSet    = errors.New("season has no promotion rule configured")
	ErrSeasonValidationFailed = errors.New("season validation failed")

	// Конфликты
	ErrClubSlugConflict = errors.New("club slug is already in use")
	ErrPlayerEmailTaken = errors.New("player email is already in use")
)
