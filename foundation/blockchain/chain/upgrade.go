package chain

import "errors"

// ErrBothChainsInvalid is returned by Upgrade when neither chain validates.
// Chains built through New and TryAddBlock can't get here, so callers should
// treat it as fatal.
var ErrBothChainsInvalid = errors.New("local and remote chains are both invalid")

// Upgrade chooses between the local and remote chain. Of two valid chains
// the longer one wins with ties going to local, otherwise the only valid
// chain wins. The caller gives up both chains and keeps the result.
func Upgrade(local, remote *Chain) (*Chain, error) {
	validLocal := local.IsValid()
	validRemote := remote.IsValid()

	switch {
	case validLocal && validRemote:
		if local.Len() >= remote.Len() {
			local.evHandler("chain: Upgrade: keep local: local[%d] remote[%d]", local.Len(), remote.Len())
			return local, nil
		}
		local.evHandler("chain: Upgrade: take remote: local[%d] remote[%d]", local.Len(), remote.Len())
		return remote, nil

	case validRemote:
		local.evHandler("chain: Upgrade: take remote: local chain is invalid")
		return remote, nil

	case validLocal:
		local.evHandler("chain: Upgrade: keep local: remote chain is invalid")
		return local, nil
	}

	local.evHandler("chain: Upgrade: FATAL: %s", ErrBothChainsInvalid)
	return nil, ErrBothChainsInvalid
}
