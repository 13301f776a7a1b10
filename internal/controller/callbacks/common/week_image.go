package common

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/groupmate_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle начертание шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	dayPaddingX      = 8
	minLessonHeight  = 18.0
	lessonRadius     = 6.0
	shadowOffset     = 3.0
	totalDaysInWeek  = 7
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 8
	defaultMaxHour   = 18
	defaultLessonLen = 90 * time.Minute
)

// Константы шрифтов
const (
	titleFontSize     = 28.0
	dayFontSize       = 24.0
	hourLabelFontSize = 18.0
	lessonFontSize    = 16.0
)

var (
	bgColor           = color.RGBA{245, 246, 248, 255}
	textColor         = color.RGBA{80, 85, 90, 220}
	hourLabelColor    = color.RGBA{110, 115, 120, 200}
	hourLineColor     = color.NRGBA{150, 150, 150, 255}
	todayBgColor      = color.NRGBA{255, 99, 71, 125}
	evenDayColor      = color.NRGBA{240, 240, 240, 255}
	oddDayColor       = color.NRGBA{220, 220, 220, 255}
	lessonColor       = color.RGBA{133, 193, 85, 220}
	cancelledColor    = color.RGBA{158, 158, 158, 200}
	lessonTextColor   = color.RGBA{20, 24, 28, 230}
	lessonShadowColor = color.RGBA{0, 0, 0, 20}
)

type hourRange struct {
	start int
	end   int
	total int
}

// lessonSpan занятие с разобранным временем
type lessonSpan struct {
	lesson model.Lesson
	start  time.Duration
	end    time.Duration
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont ставит шрифт Go нужного начертания, при ошибке basicfont
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	data := goregular.TTF
	if style == FontStyleBold {
		data = gobold.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// GenerateWeekImage рисует PNG сетку недели: семь дней от weekStart, занятия по часам.
// today подсвечивается, если попадает в неделю.
func GenerateWeekImage(number int, weekStart, today time.Time, days []model.DaySchedule) ([]byte, error) {
	weekStart = normalizeToDay(weekStart)
	today = normalizeToDay(today)

	byDay, err := groupLessonsByDay(days)
	if err != nil {
		return nil, err
	}
	hours := calculateHourRange(byDay)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, number, weekStart)
	drawHourLabels(dc, hours, cellHeight)

	for i := range totalDaysInWeek {
		date := weekStart.AddDate(0, 0, i)
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, date.Equal(today))
		drawDayHeader(dc, date, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, span := range byDay[date.Format(time.DateOnly)] {
			drawLesson(dc, span, x, y, dayWidth, hours, cellHeight)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func groupLessonsByDay(days []model.DaySchedule) (map[string][]lessonSpan, error) {
	out := make(map[string][]lessonSpan, len(days))
	for _, d := range days {
		key := d.Date.Format(time.DateOnly)
		for _, l := range d.Lessons {
			span, err := newLessonSpan(l)
			if err != nil {
				return nil, err
			}
			out[key] = append(out[key], span)
		}
	}
	return out, nil
}

func newLessonSpan(l model.Lesson) (lessonSpan, error) {
	start, err := clockOffset(l.StartTime)
	if err != nil {
		return lessonSpan{}, fmt.Errorf("lesson %q start: %w", l.Subject, err)
	}
	end := start + defaultLessonLen
	if l.EndTime != "" {
		if end, err = clockOffset(l.EndTime); err != nil {
			return lessonSpan{}, fmt.Errorf("lesson %q end: %w", l.Subject, err)
		}
	}
	if end <= start {
		end = start + defaultLessonLen
	}
	return lessonSpan{lesson: l, start: start, end: end}, nil
}

// clockOffset "09:45" -> 9h45m
func clockOffset(s string) (time.Duration, error) {
	t, err := time.Parse(UserTimeLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func calculateHourRange(byDay map[string][]lessonSpan) hourRange {
	minHour, maxHour := 24, 0
	for _, spans := range byDay {
		for _, s := range spans {
			minHour = min(minHour, int(s.start/time.Hour))
			endH := int(s.end / time.Hour)
			if s.end%time.Hour > 0 {
				endH++
			}
			maxHour = max(maxHour, endH)
		}
	}
	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(0, minHour-hourPaddingTop)
	end := min(23, maxHour+hourPaddingBot)
	return hourRange{start: start, end: end, total: end - start + 1}
}

func drawHeader(dc *gg.Context, number int, weekStart time.Time) {
	weekEnd := weekStart.AddDate(0, 0, totalDaysInWeek-1)
	title := fmt.Sprintf("Неделя %d · %s", number, formatting.GetMonthName(weekStart.Month()))
	if weekEnd.Month() != weekStart.Month() {
		title += " - " + formatting.GetMonthName(weekEnd.Month())
	}

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(imageWidth)/2, float64(headerHeight)/4, 0.5, 0.5)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleDefault)
	dc.SetColor(hourLabelColor)
	for i := range hours.total {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(formatting.FormatShortDate(date), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.GetWeekdayShort(int(date.Weekday())), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawLesson(dc *gg.Context, s lessonSpan, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startH := s.start.Hours()
	endH := s.end.Hours()

	top := y + (startH-float64(hours.start))*cellHeight
	height := max((endH-startH)*cellHeight, minLessonHeight)
	width := float64(dayWidth) - float64(dayPaddingX*2)

	fill := lessonColor
	if s.lesson.Cancelled {
		fill = cancelledColor
	}

	dc.SetColor(lessonShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, top+2+shadowOffset, width, height-4, lessonRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, lessonRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, lessonRadius)
	dc.Stroke()

	loadFont(dc, lessonFontSize, FontStyleBold)
	dc.SetColor(lessonTextColor)
	txtX := x + dayPaddingX + 8
	txtY := top + 18
	dc.DrawStringAnchored(s.lesson.StartTime, txtX, txtY, 0, 0)

	if height > 40 {
		loadFont(dc, lessonFontSize-2, FontStyleDefault)
		dc.DrawStringAnchored(truncateRunes(s.lesson.Subject, 18), txtX, txtY+18, 0, 0)
		if s.lesson.Classroom != "" && height > 60 {
			dc.DrawStringAnchored(truncateRunes(s.lesson.Classroom, 18), txtX, txtY+36, 0, 0)
		}
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// truncateRunes обрезает по символам, а не байтам: названия на кириллице
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
