package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	machine  int64 = 1
)

// Init 初始化雪花算法节点
// 应在程序启动时调用一次，machineID 范围 0-1023
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			machineID = 1
			zap.L().Warn("Invalid MachineID in config, using default value 1")
		}
		machine = machineID
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("Failed to initialize snowflake node", zap.Error(err))
		}
	})
}

// GenerateID 生成雪花 ID (int64)
func GenerateID() int64 {
	if node == nil {
		Init(machine)
	}
	return node.Generate().Int64()
}

// GenerateIDString 生成雪花 ID (string)
// 消息 ID 统一使用字符串形式，避免 JavaScript 精度丢失
func GenerateIDString() string {
	if node == nil {
		Init(machine)
	}
	return node.Generate().String()
}
