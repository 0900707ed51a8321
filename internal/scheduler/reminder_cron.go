package cron

import (
	"context"

	"github.com/minutesdesk/minutes-manager/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweep trigger times. The afternoon pass catches deadlines that turned
// urgent since the morning run.
const (
	morningSweepSpec   = "0 9 * * *"
	afternoonSweepSpec = "0 14 * * *"
)

// StartReminderCronJobs wires the daily sweep triggers. Each firing is
// panic-recovered and error-logged so a failed run never takes the process
// down; the next firing proceeds with no memory of the failure.
func StartReminderCronJobs(dispatcher *jobs.ReminderDispatcher) *cron.Cron {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	runSweep := func(trigger string) {
		report, err := dispatcher.RunDailySweep(context.Background())
		if err != nil {
			logrus.WithError(err).WithField("trigger", trigger).Error("Reminder sweep failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"trigger": trigger,
			"emitted": report.Emitted,
			"skipped": report.Skipped,
		}).Info("Scheduled reminder sweep finished")
	}

	c.AddFunc(morningSweepSpec, func() { runSweep("morning") })
	c.AddFunc(afternoonSweepSpec, func() { runSweep("afternoon") })

	c.Start()
	return c
}
