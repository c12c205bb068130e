package cpu

func incWord(reg wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		c.SetWord(reg, c.GetWord(reg)+1)
		return c.tick()
	}
}

func decWord(reg wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		c.SetWord(reg, c.GetWord(reg)-1)
		return c.tick()
	}
}

func incOperand(reg byteRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		return c.writeOperand(reg, c.inc8(v))
	}
}

func decOperand(reg byteRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		return c.writeOperand(reg, c.dec8(v))
	}
}

func addHLWord(reg wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		c.addHL(c.GetWord(reg))
		return c.tick()
	}
}

func addSPImm(c *CPU) error {
	n, err := c.fetch()
	if err != nil {
		return err
	}
	c.SP = c.addSPSigned(int8(n))
	if err := c.tick(); err != nil {
		return err
	}
	return c.tick()
}

// aluOp identifies one of the eight ALU-A operations selected by the
// middle three bits of 0x80-0xBF, 0xC6-0xFE, per spec.md §4.3.
type aluOp uint8

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

func (c *CPU) applyALU(op aluOp, value uint8) {
	switch op {
	case aluAdd:
		c.A = c.add8(c.A, value, false)
	case aluAdc:
		c.A = c.add8(c.A, value, c.Flag(FlagCarry))
	case aluSub:
		c.A = c.sub8(c.A, value, false)
	case aluSbc:
		c.A = c.sub8(c.A, value, c.Flag(FlagCarry))
	case aluAnd:
		c.A = c.and8(c.A, value)
	case aluXor:
		c.A = c.xor8(c.A, value)
	case aluOr:
		c.A = c.or8(c.A, value)
	case aluCp:
		c.sub8(c.A, value, false) // result discarded, flags only
	}
}

func aluWithOperand(op aluOp, reg byteRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		c.applyALU(op, v)
		return nil
	}
}

func aluWithImmediate(op aluOp) func(*CPU) error {
	return func(c *CPU) error {
		n, err := c.fetch()
		if err != nil {
			return err
		}
		c.applyALU(op, n)
		return nil
	}
}

func jp(c *CPU) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	c.PC = addr
	return c.tick()
}

func jpHL(c *CPU) error {
	c.PC = c.HL()
	return nil
}

func jpCond(cond condition) func(*CPU) error {
	return func(c *CPU) error {
		addr, err := c.fetchWord()
		if err != nil {
			return err
		}
		if c.test(cond) {
			c.PC = addr
			return c.tick()
		}
		return nil
	}
}

func jr(c *CPU) error {
	offset, err := c.fetch()
	if err != nil {
		return err
	}
	c.PC = uint16(int32(c.PC) + int32(int8(offset)))
	return c.tick()
}

func jrCond(cond condition) func(*CPU) error {
	return func(c *CPU) error {
		offset, err := c.fetch()
		if err != nil {
			return err
		}
		if c.test(cond) {
			c.PC = uint16(int32(c.PC) + int32(int8(offset)))
			return c.tick()
		}
		return nil
	}
}

func call(c *CPU) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	if err := c.tick(); err != nil {
		return err
	}
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = addr
	return nil
}

func callCond(cond condition) func(*CPU) error {
	return func(c *CPU) error {
		addr, err := c.fetchWord()
		if err != nil {
			return err
		}
		if !c.test(cond) {
			return nil
		}
		if err := c.tick(); err != nil {
			return err
		}
		if err := c.push(c.PC); err != nil {
			return err
		}
		c.PC = addr
		return nil
	}
}

func ret(c *CPU) error {
	addr, err := c.pop()
	if err != nil {
		return err
	}
	c.PC = addr
	return c.tick()
}

func retCond(cond condition) func(*CPU) error {
	return func(c *CPU) error {
		if err := c.tick(); err != nil {
			return err
		}
		if !c.test(cond) {
			return nil
		}
		addr, err := c.pop()
		if err != nil {
			return err
		}
		c.PC = addr
		return c.tick()
	}
}

func reti(c *CPU) error {
	addr, err := c.pop()
	if err != nil {
		return err
	}
	c.PC = addr
	c.interrupts.EnableImmediate()
	return c.tick()
}

func rst(vector uint16) func(*CPU) error {
	return func(c *CPU) error {
		if err := c.tick(); err != nil {
			return err
		}
		if err := c.push(c.PC); err != nil {
			return err
		}
		c.PC = vector
		return nil
	}
}

func nop(c *CPU) error { return nil }

func haltExec(c *CPU) error {
	c.halt()
	return nil
}

func stopExec(c *CPU) error {
	c.stop()
	return nil
}

func diExec(c *CPU) error {
	c.interrupts.DisableImmediate()
	return nil
}

func eiExec(c *CPU) error {
	c.interrupts.RequestEnable()
	return nil
}

func daaExec(c *CPU) error {
	c.daa()
	return nil
}

func cplExec(c *CPU) error {
	c.A = ^c.A
	c.SetFlag(FlagSubtract, true)
	c.SetFlag(FlagHalfCarry, true)
	return nil
}

func scfExec(c *CPU) error {
	c.SetFlag(FlagSubtract, false)
	c.SetFlag(FlagHalfCarry, false)
	c.SetFlag(FlagCarry, true)
	return nil
}

func ccfExec(c *CPU) error {
	c.SetFlag(FlagSubtract, false)
	c.SetFlag(FlagHalfCarry, false)
	c.SetFlag(FlagCarry, !c.Flag(FlagCarry))
	return nil
}
