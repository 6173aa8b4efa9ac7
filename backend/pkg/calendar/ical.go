package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const productID = "-//Campus Events//EN"

// Entry 日历中的一个活动
type Entry struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	URL         string
}

// BuildICS 生成 iCalendar 内容
// stamp 作为 DTSTAMP，由调用方传入当前时间
func BuildICS(name string, entries []Entry, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}

	for _, en := range entries {
		e := cal.AddEvent(fmt.Sprintf("%s@campus-events", en.ID))
		e.SetDtStampTime(stamp.UTC())
		e.SetStartAt(en.Start.UTC())
		e.SetEndAt(en.End.UTC())
		e.SetSummary(en.Title)
		if en.Description != "" {
			e.SetDescription(en.Description)
		}
		if en.Location != "" {
			e.SetLocation(en.Location)
		}
		if en.URL != "" {
			e.SetURL(en.URL)
		}
		e.SetStatus(ics.ObjectStatusConfirmed)
		e.SetClass(ics.ClassificationPublic)

		alarm := e.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger("-PT1H")
		alarm.SetDescription(en.Title)
	}

	return []byte(cal.Serialize()), nil
}
