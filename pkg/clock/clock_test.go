package clock

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSystem(t *testing.T) {
	Convey("Given the system clock", t, func() {
		c := NewSystem()

		Convey("Then it tracks wall time and never goes backwards", func() {
			a := c.Now()
			So(a, ShouldBeBetweenOrEqual, time.Now().Unix()-1, time.Now().Unix()+1)
			c.last = a + 100
			So(c.Now(), ShouldEqual, a+100)
		})
	})
}

func TestManual(t *testing.T) {
	Convey("Given a manual clock", t, func() {
		c := NewManual(1000)

		Convey("When it is advanced", func() {
			c.Advance(30)
			c.Advance(-50)

			Convey("Then only forward moves apply", func() {
				So(c.Now(), ShouldEqual, 1030)
			})
		})

		Convey("When it is set", func() {
			c.Set(5000)
			c.Set(10)

			Convey("Then earlier times are ignored", func() {
				So(c.Now(), ShouldEqual, 5000)
			})
		})
	})
}
