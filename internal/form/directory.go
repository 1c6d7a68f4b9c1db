package form

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

// UnknownDoctor is displayed when a medecin_id cannot be resolved.
const UnknownDoctor = "Médecin inconnu"

const doctorsKey = "doctors"

// DoctorSource is the part of the Users resource the directory reads.
type DoctorSource interface {
	ListDoctors(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// DoctorDirectory resolves doctor ids to names and feeds the doctor picker.
// Lookups never fail: misses degrade to UnknownDoctor or an empty picker.
type DoctorDirectory struct {
	src   DoctorSource
	cache *gocache.Cache
	log   *logger.Logger
}

func NewDoctorDirectory(src DoctorSource, ttl time.Duration, log *logger.Logger) *DoctorDirectory {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DoctorDirectory{
		src:   src,
		cache: gocache.New(ttl, 2*ttl),
		log:   log.WithComponent("doctor_directory"),
	}
}

func (d *DoctorDirectory) Name(ctx context.Context, id *int64) string {
	if id == nil {
		return UnknownDoctor
	}
	key := "user:" + strconv.FormatInt(*id, 10)
	if name, ok := d.cache.Get(key); ok {
		return name.(string)
	}

	user, err := d.src.GetUser(ctx, *id)
	if err != nil || user == nil || user.Username == "" {
		if err != nil {
			d.log.Warn("doctor lookup failed", "medecin_id", *id, "error", err.Error())
		}
		return UnknownDoctor
	}
	d.cache.SetDefault(key, user.Username)
	return user.Username
}

// Options lists the doctors offered by the medecin_id picker.
func (d *DoctorDirectory) Options(ctx context.Context) []model.User {
	if cached, ok := d.cache.Get(doctorsKey); ok {
		return cached.([]model.User)
	}

	doctors, err := d.src.ListDoctors(ctx)
	if err != nil {
		d.log.Warn("could not load doctors", "error", err.Error())
		return []model.User{}
	}
	for _, doc := range doctors {
		d.cache.SetDefault("user:"+strconv.FormatInt(doc.ID, 10), doc.Username)
	}
	d.cache.SetDefault(doctorsKey, doctors)
	return doctors
}

func (d *DoctorDirectory) Invalidate() {
	d.cache.Flush()
}
