package seimart

import (
	"github.com/seimart/seimart/common"
)

var log = common.NewLog("seimart")
