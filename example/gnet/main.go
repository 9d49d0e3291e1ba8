// FILE: example/gnet/main.go
package main

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/bridge"
	"github.com/lixenwraith/cclog/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
	log *bridge.Bridge
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	_ = es.log.Emit(cclog.LevelTrace, "echo", "traffic", "bytes", len(buf))
	c.Write(buf)
	return gnet.None
}

func main() {
	reg := cclog.NewRegistry()
	if err := reg.Setup(cclog.NewMetrics()); err != nil {
		panic(err)
	}
	defer reg.Teardown()

	logger, err := cclog.NewBuilder().
		Path("/var/log/gnet.log").
		BufferCapacity(0). // unbuffered, every record lands immediately
		OpenMode(cclog.OpenAppend).
		Build(reg)
	if err != nil {
		panic(err)
	}
	defer cclog.Destroy(&logger)

	builder := compat.NewBuilder().WithLogger(logger, cclog.LevelDebug)
	gnetAdapter, err := builder.BuildGnet()
	if err != nil {
		panic(err)
	}
	br, _ := builder.GetBridge()
	defer br.Unregister()

	err = gnet.Run(
		&echoServer{log: br},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
