package cpu

// readOperand reads one of the eight byte operands of spec.md §4.3's LD/ALU
// bitfield tables; regHLInd charges a bus read through (HL).
func (c *CPU) readOperand(reg byteRegister) (uint8, error) {
	if reg == regHLInd {
		return c.readByte(c.HL())
	}
	return c.Get(reg), nil
}

// writeOperand mirrors readOperand for the write side.
func (c *CPU) writeOperand(reg byteRegister, value uint8) error {
	if reg == regHLInd {
		return c.writeByte(c.HL(), value)
	}
	c.Set(reg, value)
	return nil
}

// ldRR builds the LD r,r' executor for one (dst, src) pair; 0x76 (dst=src=
// regHLInd) is HALT and is never routed here.
func ldRR(dst, src byteRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.readOperand(src)
		if err != nil {
			return err
		}
		return c.writeOperand(dst, v)
	}
}

// ldRN builds LD r,n (and, for dst=regHLInd, LD (HL),n).
func ldRN(dst byteRegister) func(*CPU) error {
	return func(c *CPU) error {
		n, err := c.fetch()
		if err != nil {
			return err
		}
		return c.writeOperand(dst, n)
	}
}

func ldWordImm(dst wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.SetWord(dst, v)
		return nil
	}
}

func ldIndirectFromA(dst wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		return c.writeByte(c.GetWord(dst), c.A)
	}
}

func ldAFromIndirect(src wordRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.readByte(c.GetWord(src))
		if err != nil {
			return err
		}
		c.A = v
		return nil
	}
}

func ldIndHLIncFromA(c *CPU) error {
	if err := c.writeByte(c.HL(), c.A); err != nil {
		return err
	}
	c.SetHL(c.HL() + 1)
	return nil
}

func ldIndHLDecFromA(c *CPU) error {
	if err := c.writeByte(c.HL(), c.A); err != nil {
		return err
	}
	c.SetHL(c.HL() - 1)
	return nil
}

func ldAFromIndHLInc(c *CPU) error {
	v, err := c.readByte(c.HL())
	if err != nil {
		return err
	}
	c.A = v
	c.SetHL(c.HL() + 1)
	return nil
}

func ldAFromIndHLDec(c *CPU) error {
	v, err := c.readByte(c.HL())
	if err != nil {
		return err
	}
	c.A = v
	c.SetHL(c.HL() - 1)
	return nil
}

func ldIndImm16FromSP(c *CPU) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	if err := c.writeByte(addr, uint8(c.SP)); err != nil {
		return err
	}
	return c.writeByte(addr+1, uint8(c.SP>>8))
}

func ldIndImm16FromA(c *CPU) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	return c.writeByte(addr, c.A)
}

func ldAFromIndImm16(c *CPU) error {
	addr, err := c.fetchWord()
	if err != nil {
		return err
	}
	v, err := c.readByte(addr)
	if err != nil {
		return err
	}
	c.A = v
	return nil
}

// ldhFromA implements LDH (n),A: the high page 0xFF00+n.
func ldhFromA(c *CPU) error {
	n, err := c.fetch()
	if err != nil {
		return err
	}
	return c.writeByte(0xFF00+uint16(n), c.A)
}

func ldhToA(c *CPU) error {
	n, err := c.fetch()
	if err != nil {
		return err
	}
	v, err := c.readByte(0xFF00 + uint16(n))
	if err != nil {
		return err
	}
	c.A = v
	return nil
}

func ldIndCFromA(c *CPU) error {
	return c.writeByte(0xFF00+uint16(c.C), c.A)
}

func ldAFromIndC(c *CPU) error {
	v, err := c.readByte(0xFF00 + uint16(c.C))
	if err != nil {
		return err
	}
	c.A = v
	return nil
}

func ldSPFromHL(c *CPU) error {
	c.SP = c.HL()
	return c.tick()
}

// ldHLFromSPOffset implements LD HL,SP+e, sharing flag logic with ADD SP,e.
func ldHLFromSPOffset(c *CPU) error {
	n, err := c.fetch()
	if err != nil {
		return err
	}
	c.SetHL(c.addSPSigned(int8(n)))
	return c.tick()
}

func push(reg stackRegister) func(*CPU) error {
	return func(c *CPU) error {
		if err := c.tick(); err != nil {
			return err
		}
		return c.push(c.GetStack(reg))
	}
}

func pop(reg stackRegister) func(*CPU) error {
	return func(c *CPU) error {
		v, err := c.pop()
		if err != nil {
			return err
		}
		c.SetStack(reg, v)
		return nil
	}
}
