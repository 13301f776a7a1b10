package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type monthKey struct {
	month   Month
	variant Variant
}

// Cache хранит сгенерированные клавиатуры. Опубликованная клавиатура
// больше не меняется: вызывающий код дописывает ряды через keyboard.Append.
type Cache struct {
	gen    *Generator
	logger *zap.Logger
	now    func() time.Time

	months     sync.Map // monthKey -> *models.InlineKeyboardMarkup
	weeks      sync.Map // int -> *models.InlineKeyboardMarkup
	userMonths sync.Map // userID -> Month
	group      singleflight.Group

	weeksList  *models.InlineKeyboardMarkup
	monthsList *models.InlineKeyboardMarkup
}

// NewCache создаёт кэш поверх генератора; now задаёт "сегодня" для LastMonthOrNow
func NewCache(gen *Generator, now func() time.Time, logger *zap.Logger) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		gen:        gen,
		logger:     logger,
		now:        now,
		weeksList:  gen.GenerateWeeksList(),
		monthsList: gen.GenerateMonthsMarkup(),
	}
}

// Window окно календаря
func (c *Cache) Window() Window {
	return c.gen.Window()
}

// Precompute заранее строит все месяцы окна для всех видов и все недели
func (c *Cache) Precompute(ctx context.Context) error {
	start := time.Now()
	months := c.gen.Window().Months()

	g, ctx := errgroup.WithContext(ctx)
	for _, v := range Variants {
		g.Go(func() error {
			for _, m := range months {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := c.Get(m, v); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for idx := 0; idx < c.gen.Window().WeekCount(); idx++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			// неделя может целиком выпасть из окна только на краях
			if _, err := c.Week(idx); err != nil && len(c.gen.WeekDays(idx)) > 0 {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("precompute calendars: %w", err)
	}

	c.logger.Info("Calendar cache precomputed",
		zap.Int("months", len(months)),
		zap.Int("variants", len(Variants)),
		zap.Int("weeks", c.gen.Window().WeekCount()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Get возвращает клавиатуру месяца, при промахе строит и сохраняет её.
// Гонка двух промахов даёт одно и то же значение.
func (c *Cache) Get(m Month, v Variant) (*models.InlineKeyboardMarkup, error) {
	key := monthKey{month: m, variant: v}
	if kb, ok := c.months.Load(key); ok {
		return kb.(*models.InlineKeyboardMarkup), nil
	}

	res, err, _ := c.group.Do("m:"+v.String()+":"+m.String(), func() (any, error) {
		kb, err := c.gen.Generate(m, v)
		if err != nil {
			return nil, err
		}
		actual, _ := c.months.LoadOrStore(key, kb)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.InlineKeyboardMarkup), nil
}

// Week возвращает клавиатуру относительной недели
func (c *Cache) Week(idx int) (*models.InlineKeyboardMarkup, error) {
	if kb, ok := c.weeks.Load(idx); ok {
		return kb.(*models.InlineKeyboardMarkup), nil
	}

	res, err, _ := c.group.Do(fmt.Sprintf("w:%d", idx), func() (any, error) {
		kb, err := c.gen.GenerateWeek(idx)
		if err != nil {
			return nil, err
		}
		actual, _ := c.weeks.LoadOrStore(idx, kb)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.InlineKeyboardMarkup), nil
}

// WeeksList список недель окна
func (c *Cache) WeeksList() *models.InlineKeyboardMarkup {
	return c.weeksList
}

// MonthsList список месяцев окна
func (c *Cache) MonthsList() *models.InlineKeyboardMarkup {
	return c.monthsList
}

// RememberUserMonth запоминает месяц, до которого пользователь долистал
func (c *Cache) RememberUserMonth(userID int64, m Month) {
	c.userMonths.Store(userID, m)
}

// LastMonthOrNow последний запомненный месяц пользователя или текущий
func (c *Cache) LastMonthOrNow(userID int64) Month {
	if m, ok := c.userMonths.Load(userID); ok {
		return m.(Month)
	}
	return c.gen.Window().Clamp(MonthOf(c.now()))
}
