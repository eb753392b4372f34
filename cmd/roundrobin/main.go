// roundrobin is a minimal demo program: three cooperative tasks print
// their name and yield, round-robin, until interrupted.
package main

import (
	"flag"
	"os"

	"github.com/rajszym/intros"
)

var configFileArg = flag.String(
	"config", "roundrobin-config.yaml",
	"Config file to load",
)

func main() {
	flag.Parse()
	os.Exit(intros.Boot(*configFileArg, run))
}

func run(sys *intros.System) {
	log := intros.NewCompLogger("roundrobin")
	names := []string{"A", "B", "C"}
	tasks := make([]*intros.Task, len(names))

	for i, name := range names {
		tasks[i] = intros.NewTask(name, 0, nil)
	}

	for i, t := range tasks {
		name := names[i]
		sys.StartFrom(t, func() {
			for {
				log.Infof("%s running at tick %d", name, sys.SysTime())
				sys.Yield()
			}
		})
	}

	for _, t := range tasks {
		sys.Join(t)
	}
}
