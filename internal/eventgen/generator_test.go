package eventgen_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jayant1554/credit-score-defi/internal/domain/normalize"
	"github.com/jayant1554/credit-score-defi/internal/eventgen"
	"github.com/jayant1554/credit-score-defi/internal/eventio"
	"github.com/jayant1554/credit-score-defi/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithWriter(io.Discard))
	os.Exit(m.Run())
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		ctx := context.Background()
		cfg := eventgen.DefaultConfig()
		cfg.Wallets = 60

		Convey("When generating an export", func() {
			recs, stats, err := eventgen.Generate(ctx, cfg)

			Convey("Then every wallet should open with a deposit", func() {
				So(err, ShouldBeNil)
				So(stats.Wallets, ShouldEqual, 60)
				So(stats.Events, ShouldEqual, len(recs))

				seen := map[string]bool{}
				for _, r := range recs {
					if !seen[r.UserWallet] {
						So(r.Action, ShouldEqual, eventgen.ActionDeposit)
						seen[r.UserWallet] = true
					}
					So(r.UserWallet, ShouldHaveLength, 42)
					So(r.TxHash, ShouldHaveLength, 66)
					So(r.Timestamp, ShouldBeGreaterThanOrEqualTo, cfg.Start.Unix())
					So(r.Timestamp, ShouldBeLessThanOrEqualTo, cfg.Start.Unix()+int64(cfg.SpanDays)*86400)
				}
				So(len(seen), ShouldEqual, 60)
			})

			Convey("Then tx hashes should be unique", func() {
				hashes := map[string]bool{}
				for _, r := range recs {
					So(hashes[r.TxHash], ShouldBeFalse)
					hashes[r.TxHash] = true
				}
			})

			Convey("Then profile counts should cover every wallet", func() {
				total := 0
				for _, n := range stats.ByProfile {
					total += n
				}
				So(total, ShouldEqual, 60)
				So(stats.ByAction[eventgen.ActionDeposit], ShouldBeGreaterThanOrEqualTo, 60)
			})
		})

		Convey("When generating twice with different worker counts", func() {
			cfg.Workers = 1
			a, _, errA := eventgen.Generate(ctx, cfg)
			cfg.Workers = 8
			b, _, errB := eventgen.Generate(ctx, cfg)

			Convey("Then the exports should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the seed changes", func() {
			a, _, _ := eventgen.Generate(ctx, cfg)
			cfg.Seed = 7
			b, _, _ := eventgen.Generate(ctx, cfg)

			Convey("Then the export should differ", func() {
				So(a[0].UserWallet, ShouldNotEqual, b[0].UserWallet)
			})
		})

		Convey("When the export is written and read back", func() {
			recs, _, err := eventgen.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			So(eventio.WriteJSON(&buf, recs), ShouldBeNil)
			raw, err := eventio.ReadEvents(&buf)
			So(err, ShouldBeNil)

			res, err := normalize.New().Normalize(ctx, raw)

			Convey("Then the normalizer should keep every record", func() {
				So(err, ShouldBeNil)
				So(res.Read, ShouldEqual, len(recs))
				So(res.DroppedTotal(), ShouldEqual, 0)
			})
		})

		Convey("When the config is invalid", func() {
			cases := []func(c *eventgen.Config){
				func(c *eventgen.Config) { c.Wallets = 0 },
				func(c *eventgen.Config) { c.SpanDays = 0 },
				func(c *eventgen.Config) { c.Start = time.Time{} },
			}

			Convey("Then Generate should fail with ErrInvalidConfig", func() {
				for _, mutate := range cases {
					c := eventgen.DefaultConfig()
					mutate(&c)
					_, _, err := eventgen.Generate(ctx, c)
					So(errors.Is(err, eventgen.ErrInvalidConfig), ShouldBeTrue)
				}
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, _, err := eventgen.Generate(cctx, cfg)

			Convey("Then it should stop with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestProfileString(t *testing.T) {
	Convey("Given every profile", t, func() {
		names := make([]string, 0, len(eventgen.Profiles))
		for _, p := range eventgen.Profiles {
			names = append(names, p.String())
		}

		Convey("Then each should have a distinct name", func() {
			So(strings.Join(names, ","), ShouldEqual, "saver,repayer,leveraged,liquidated")
			So(eventgen.Profile(99).String(), ShouldEqual, "unknown")
		})
	})
}
