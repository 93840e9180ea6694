// Command motor-test drives a short forward/backward/left/right
// sequence to verify wiring after assembly. Run it with the wheels
// off the ground.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-jetbot/internal/log"
	"github.com/teslashibe/go-jetbot/pkg/i2c"
	"github.com/teslashibe/go-jetbot/pkg/motor"
	"github.com/teslashibe/go-jetbot/pkg/robot"
)

func main() {
	busNum := flag.Int("bus", 1, "i2c bus number")
	speed := flag.Float64("speed", 0.5, "test speed in [0, 1]")
	hold := flag.Duration("hold", time.Second, "how long to hold each direction")
	invertLeft := flag.Bool("invert-left", false, "invert the left channel")
	invertRight := flag.Bool("invert-right", false, "invert the right channel")
	flag.Parse()

	log.Init("info")
	logger := log.L()

	bus, err := i2c.Open(*busNum)
	if err != nil {
		logger.Error("i2c bus open failed", "bus", *busNum, "error", err)
		os.Exit(1)
	}
	driver, err := motor.New(bus, motor.Config{
		InvertLeft:  *invertLeft,
		InvertRight: *invertRight,
	}, logger)
	if err != nil {
		logger.Error("no usable motor controller", "error", err)
		bus.Close()
		os.Exit(1)
	}

	bot := robot.New(driver, logger)
	defer bot.Close()
	logger.Info("controller detected", "kind", driver.Kind())

	// Ctrl+C mid-sequence must still stop the motors.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		bot.Close()
		os.Exit(1)
	}()

	steps := []struct {
		name  string
		drive func(float64) error
	}{
		{"forward", bot.Forward},
		{"backward", bot.Backward},
		{"left", bot.Left},
		{"right", bot.Right},
	}

	for _, step := range steps {
		logger.Info("driving", "direction", step.name, "speed", *speed)
		if err := step.drive(*speed); err != nil {
			logger.Error("drive failed", "direction", step.name, "error", err)
			os.Exit(1)
		}
		time.Sleep(*hold)

		if err := bot.Stop(); err != nil {
			logger.Error("stop failed", "error", err)
			os.Exit(1)
		}
		time.Sleep(*hold / 2)
	}

	logger.Info("motor test complete")
}
