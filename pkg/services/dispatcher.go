package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"blood-helpline/pkg/matching"
	"blood-helpline/pkg/models"
	"blood-helpline/pkg/utils"
)

// Alert is the request broadcast to matching donors
type Alert struct {
	BloodGroup   models.BloodGroup
	Hospital     string
	PatientName  string
	ContactPhone string
}

// Message renders the SMS body sent to each donor
func (a Alert) Message() string {
	return fmt.Sprintf(
		"Urgent: Blood donation request for %s at %s. Patient Name: %s. Please contact %s for details and to assist.",
		a.BloodGroup, a.Hospital, a.PatientName, a.ContactPhone,
	)
}

// DeliveryFailure records one donor the alert could not be sent to
type DeliveryFailure struct {
	DonorName string
	Phone     string
	Err       error
}

// DispatchReport summarizes one fan-out
type DispatchReport struct {
	Attempted int
	Delivered int
	Skipped   int
	Failures  []DeliveryFailure
}

// Dispatcher sends an alert to every donor independently
type Dispatcher struct {
	sender      SMSSender
	countryCode string
	concurrency int
	stats       *Stats
}

// NewDispatcher creates a dispatcher. concurrency bounds in-flight sends.
func NewDispatcher(sender SMSSender, countryCode string, concurrency int, stats *Stats) *Dispatcher {
	if countryCode == "" {
		countryCode = matching.DefaultCountryCode
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &Dispatcher{
		sender:      sender,
		countryCode: countryCode,
		concurrency: concurrency,
		stats:       stats,
	}
}

// Dispatch sends alert to each donor. A failed send is logged and counted
// and never stops the remaining sends.
func (d *Dispatcher) Dispatch(ctx context.Context, donors []models.DonorRecord, alert Alert) DispatchReport {
	var (
		mu     sync.Mutex
		report DispatchReport
		g      errgroup.Group
	)
	g.SetLimit(d.concurrency)
	body := alert.Message()

	for _, donor := range donors {
		if donor.Phone == "" {
			report.Skipped++
			continue
		}
		report.Attempted++
		donor := donor
		to := matching.NormalizePhone(donor.Phone, d.countryCode)

		g.Go(func() error {
			sid, err := d.sender.SendSMS(ctx, to, body)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Failed to send SMS to %s (%s): %v", donor.Name, utils.MaskPhone(to), err)
				report.Failures = append(report.Failures, DeliveryFailure{DonorName: donor.Name, Phone: to, Err: err})
				d.stats.alertsFailed.Add(1)
				return nil
			}
			log.Printf("SMS sent to %s (%s). SID: %s", donor.Name, utils.MaskPhone(to), sid)
			report.Delivered++
			d.stats.alertsDelivered.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	return report
}
