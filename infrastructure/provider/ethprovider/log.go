package ethprovider

import (
	"github.com/kaspanet/walletsession/infrastructure/logger"
	"github.com/kaspanet/walletsession/util/panics"
)

var log, _ = logger.Get(logger.SubsystemTags.ETHP)
var spawn = panics.GoroutineWrapperFunc(log)
