// Package sample generates the demo dataset the console shows before, or
// instead of, the backend's data.
package sample

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/iamarketings/Operator/internal/models"
)

var (
	names      = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy"}
	userAgents = []string{"Yealink T46S", "Grandstream GXP2170", "Polycom VVX 450", "Zoiper 5", "Linphone"}

	offlineStatuses = []models.ExtensionStatus{
		models.ExtensionUnregistered,
		models.ExtensionInUse,
		models.ExtensionRinging,
		models.ExtensionUnavailable,
	}
	dispositions = []models.Disposition{
		models.DispositionAnswered,
		models.DispositionNoAnswer,
		models.DispositionBusy,
		models.DispositionFailed,
	}
)

// Sizes is the number of records generated per collection. Trunks and queues
// come from fixed sets, so their sizes only cap those sets.
type Sizes struct {
	Extensions int `yaml:"extensions"`
	Trunks     int `yaml:"trunks"`
	Queues     int `yaml:"queues"`
	CDRs       int `yaml:"cdr"`
}

func (s Sizes) Validate() error {
	if s.Extensions < 0 || s.Trunks < 0 || s.Queues < 0 || s.CDRs < 0 {
		return fmt.Errorf("sample sizes must not be negative: %+v", s)
	}
	return nil
}

var DefaultSizes = Sizes{Extensions: 20, Trunks: 4, Queues: 2, CDRs: 100}

// Dataset holds the four canonical collections.
type Dataset struct {
	Extensions []models.Extension
	Trunks     []models.Trunk
	Queues     []models.Queue
	CDRs       []models.CDR
}

// Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Between returns a uniform integer in [min, max].
func (g *Generator) Between(min, max int) int {
	return g.rng.Intn(max-min+1) + min
}

func (g *Generator) Chance(p float64) bool {
	return g.rng.Float64() < p
}

func (g *Generator) token(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[g.rng.Intn(len(alphabet))])
	}
	return b.String()
}

func (g *Generator) PhoneNumber() string {
	return fmt.Sprintf("+1%d%d%d", g.Between(200, 999), g.Between(100, 999), g.Between(1000, 9999))
}

func (g *Generator) Channel() string {
	return fmt.Sprintf("PJSIP/%d-%s", g.Between(100, 500), g.token(8))
}

func (g *Generator) IPAddress() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.Between(1, 254), g.Between(1, 254), g.Between(1, 254), g.Between(1, 254))
}

func (g *Generator) Extensions(count int) []models.Extension {
	exts := make([]models.Extension, 0, count)
	registered := count * 9 / 10
	for i := 0; i < count; i++ {
		number := strconv.Itoa(1000 + i)
		name := names[i%len(names)]

		status := models.ExtensionRegistered
		if i >= registered {
			status = offlineStatuses[g.rng.Intn(len(offlineStatuses))]
		}

		protocol := models.ProtocolSIP
		if g.Chance(0.5) {
			protocol = models.ProtocolPJSIP
		}

		exts = append(exts, models.Extension{
			ID:        "ext-" + number,
			Number:    number,
			Name:      name + " " + number,
			Secret:    g.token(8),
			Protocol:  protocol,
			Status:    status,
			IPAddress: g.IPAddress(),
			UserAgent: userAgents[g.rng.Intn(len(userAgents))],
			Voicemail: models.Voicemail{
				Enabled: g.Chance(0.3),
				PIN:     strconv.Itoa(g.Between(1000, 9999)),
				Email:   strings.ToLower(name) + "@example.com",
			},
			CallRecording: models.CallRecording{
				Incoming: g.Chance(0.5),
				Outgoing: g.Chance(0.2),
			},
		})
	}
	return exts
}

func (g *Generator) Trunks(count int) []models.Trunk {
	trunks := []models.Trunk{
		{ID: "trunk-1", Name: "Fournisseur A", Type: models.TrunkPJSIP, Status: models.TrunkRegistered, Host: "sip.fournisseurA.com"},
		{ID: "trunk-2", Name: "Fournisseur B", Type: models.TrunkSIP, Status: models.TrunkRegistered, Host: "sip.fournisseurB.net"},
		{ID: "trunk-3", Name: "Liaison Inter-site", Type: models.TrunkIAX2, Status: models.TrunkUnregistered, Host: "192.168.1.254"},
		{ID: "trunk-4", Name: "Backup SIP", Type: models.TrunkPJSIP, Status: models.TrunkUnreachable, Host: "backup.sip.com"},
	}
	return trunks[:clamp(count, 0, len(trunks))]
}

// Queues builds the demo queues from exts. Members only reference extensions
// present in exts.
func (g *Generator) Queues(exts []models.Extension, count int) []models.Queue {
	queues := []models.Queue{
		{ID: "q-1", Name: "Support Technique", Strategy: models.StrategyRoundRobin, Members: loggedIn(window(exts, 0, 3))},
		{ID: "q-2", Name: "Ventes", Strategy: models.StrategyRingAll, Members: loggedIn(window(exts, 3, 5))},
	}
	return queues[:clamp(count, 0, len(queues))]
}

// CDRs generates count records ending at now, 100 seconds apart.
func (g *Generator) CDRs(count int, now time.Time) []models.CDR {
	records := make([]models.CDR, 0, count)
	for i := 0; i < count; i++ {
		callDate := now.Add(-time.Duration(i) * 100 * time.Second).UTC()
		disposition := dispositions[g.rng.Intn(len(dispositions))]
		duration := g.Between(0, 3600)

		billsec := 0
		if disposition == models.DispositionAnswered {
			billsec = max(0, duration-g.Between(5, 15))
		}

		uniqueID := fmt.Sprintf("%d.%d", now.Unix(), i)
		var recording string
		if disposition == models.DispositionAnswered && g.Chance(0.4) {
			recording = fmt.Sprintf("monitor/%s/%s.wav", now.UTC().Format("2006/01/02"), uniqueID)
		}

		records = append(records, models.CDR{
			ID:                 fmt.Sprintf("cdr-%d", callDate.UnixMilli()),
			CallDate:           callDate,
			CallerID:           fmt.Sprintf("%q <%s>", names[g.rng.Intn(len(names))], g.PhoneNumber()),
			Src:                g.PhoneNumber(),
			Dst:                strconv.Itoa(g.Between(1000, 4000)),
			Context:            "from-internal",
			Channel:            g.Channel(),
			DestinationChannel: g.Channel(),
			LastApplication:    "Dial",
			LastData:           "PJSIP/1001",
			Duration:           duration,
			BillableSeconds:    billsec,
			Disposition:        disposition,
			AMAFlags:           3,
			UniqueID:           uniqueID,
			RecordingFile:      recording,
		})
	}
	return records
}

func (g *Generator) Dataset(sizes Sizes, now time.Time) Dataset {
	exts := g.Extensions(sizes.Extensions)
	return Dataset{
		Extensions: exts,
		Trunks:     g.Trunks(sizes.Trunks),
		Queues:     g.Queues(exts, sizes.Queues),
		CDRs:       g.CDRs(sizes.CDRs, now),
	}
}

func window(exts []models.Extension, from, to int) []models.Extension {
	from = clamp(from, 0, len(exts))
	to = clamp(to, from, len(exts))
	return exts[from:to]
}

func loggedIn(exts []models.Extension) []models.QueueMember {
	members := make([]models.QueueMember, 0, len(exts))
	for _, ext := range exts {
		members = append(members, models.QueueMember{ID: models.MemberID(ext.ID), Name: ext.Name, Status: models.MemberLoggedIn})
	}
	return members
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
