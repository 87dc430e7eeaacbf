package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ IssuanceService = (*Service)(nil)
	_ ReadService     = (*Service)(nil)
	_ RecordLocker    = (*MemoryRecordLocker)(nil)
	_ ProofValidator  = BasicProofValidator{}
	_ ProofValidator  = ProofValidatorFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
