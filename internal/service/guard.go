package service

// CanMutate 只读操作总是放行，写操作要求已登录且为所有者
func CanMutate(actor, owner uint64, readOnly bool) bool {
	return readOnly || (actor != 0 && actor == owner)
}

func requireActor(actor uint64) error {
	if actor == 0 {
		return ErrUnauthorized
	}
	return nil
}

func requireOwner(actor, owner uint64) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !CanMutate(actor, owner, false) {
		return ErrForbidden
	}
	return nil
}
