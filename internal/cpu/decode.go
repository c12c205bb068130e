package cpu

import "fmt"

// hexByte renders a small literal the way spec.md §4.9 wants byte literals
// printed: uppercase hex with an "h" suffix, no padding.
func hexByte(v uint16) string { return fmt.Sprintf("%Xh", v) }

// Opcode is one entry of the primary or CB-prefixed dispatch table: a
// mnemonic (shared with the disassembler) and its executor. An entry with
// a nil exec is an undefined opcode.
type Opcode struct {
	Name string
	exec func(*CPU) error
}

// byteRegOrder is the register ordering spec.md §4.3 assigns to the
// low three bits of most opcodes: B,C,D,E,H,L,(HL),A.
var byteRegOrder = [8]byteRegister{regB, regC, regD, regE, regH, regL, regHLInd, regA}
var byteRegNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var wordRegOrder = [4]wordRegister{wordBC, wordDE, wordHL, wordSP}
var wordRegNames = [4]string{"BC", "DE", "HL", "SP"}

var stackRegOrder = [4]stackRegister{stackBC, stackDE, stackHL, stackAF}
var stackRegNames = [4]string{"BC", "DE", "HL", "AF"}

var condOrder = [4]condition{condNZ, condZ, condNC, condC}
var condNames = [4]string{"NZ", "Z", "NC", "C"}

var aluNames = [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

var rstVectors = [8]uint16{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38}

var primaryTable [256]Opcode
var cbTable [256]Opcode

func init() {
	buildPrimaryTable()
	buildCBTable()
}

func buildPrimaryTable() {
	primaryTable[0x00] = Opcode{"NOP", nop}
	primaryTable[0x10] = Opcode{"STOP", stopExec}
	primaryTable[0x76] = Opcode{"HALT", haltExec}
	primaryTable[0xF3] = Opcode{"DI", diExec}
	primaryTable[0xFB] = Opcode{"EI", eiExec}
	primaryTable[0x27] = Opcode{"DAA", daaExec}
	primaryTable[0x2F] = Opcode{"CPL", cplExec}
	primaryTable[0x37] = Opcode{"SCF", scfExec}
	primaryTable[0x3F] = Opcode{"CCF", ccfExec}
	primaryTable[0x07] = Opcode{"RLCA", accRotate(rlc, "RLCA")}
	primaryTable[0x0F] = Opcode{"RRCA", accRotate(rrc, "RRCA")}
	primaryTable[0x17] = Opcode{"RLA", accRotateCarry(rl, "RLA")}
	primaryTable[0x1F] = Opcode{"RRA", accRotateCarry(rr, "RRA")}

	primaryTable[0x08] = Opcode{"LD (nn),SP", ldIndImm16FromSP}
	primaryTable[0xE8] = Opcode{"ADD SP,e", addSPImm}
	primaryTable[0xF8] = Opcode{"LD HL,SP+e", ldHLFromSPOffset}
	primaryTable[0xF9] = Opcode{"LD SP,HL", ldSPFromHL}

	primaryTable[0x02] = Opcode{"LD (BC),A", ldIndirectFromA(wordBC)}
	primaryTable[0x12] = Opcode{"LD (DE),A", ldIndirectFromA(wordDE)}
	primaryTable[0x22] = Opcode{"LD (HL+),A", ldIndHLIncFromA}
	primaryTable[0x32] = Opcode{"LD (HL-),A", ldIndHLDecFromA}
	primaryTable[0x0A] = Opcode{"LD A,(BC)", ldAFromIndirect(wordBC)}
	primaryTable[0x1A] = Opcode{"LD A,(DE)", ldAFromIndirect(wordDE)}
	primaryTable[0x2A] = Opcode{"LD A,(HL+)", ldAFromIndHLInc}
	primaryTable[0x3A] = Opcode{"LD A,(HL-)", ldAFromIndHLDec}

	primaryTable[0xE0] = Opcode{"LDH (n),A", ldhFromA}
	primaryTable[0xF0] = Opcode{"LDH A,(n)", ldhToA}
	primaryTable[0xE2] = Opcode{"LD (C),A", ldIndCFromA}
	primaryTable[0xF2] = Opcode{"LD A,(C)", ldAFromIndC}
	primaryTable[0xEA] = Opcode{"LD (nn),A", ldIndImm16FromA}
	primaryTable[0xFA] = Opcode{"LD A,(nn)", ldAFromIndImm16}

	primaryTable[0x18] = Opcode{"JR e", jr}
	primaryTable[0xC3] = Opcode{"JP nn", jp}
	primaryTable[0xE9] = Opcode{"JP HL", jpHL}
	primaryTable[0xCD] = Opcode{"CALL nn", call}
	primaryTable[0xC9] = Opcode{"RET", ret}
	primaryTable[0xD9] = Opcode{"RETI", reti}

	for i, reg := range wordRegOrder {
		primaryTable[0x01+uint8(i)<<4] = Opcode{"LD " + wordRegNames[i] + ",nn", ldWordImm(reg)}
		primaryTable[0x03+uint8(i)<<4] = Opcode{"INC " + wordRegNames[i], incWord(reg)}
		primaryTable[0x0B+uint8(i)<<4] = Opcode{"DEC " + wordRegNames[i], decWord(reg)}
		primaryTable[0x09+uint8(i)<<4] = Opcode{"ADD HL," + wordRegNames[i], addHLWord(reg)}
	}

	for i, cond := range condOrder {
		primaryTable[0x20+uint8(i)<<3] = Opcode{"JR " + condNames[i] + ",e", jrCond(cond)}
		primaryTable[0xC2+uint8(i)<<3] = Opcode{"JP " + condNames[i] + ",nn", jpCond(cond)}
		primaryTable[0xC4+uint8(i)<<3] = Opcode{"CALL " + condNames[i] + ",nn", callCond(cond)}
		primaryTable[0xC0+uint8(i)<<3] = Opcode{"RET " + condNames[i], retCond(cond)}
	}

	for i, reg := range stackRegOrder {
		primaryTable[0xC1+uint8(i)<<4] = Opcode{"POP " + stackRegNames[i], pop(reg)}
		primaryTable[0xC5+uint8(i)<<4] = Opcode{"PUSH " + stackRegNames[i], push(reg)}
	}

	for i, vector := range rstVectors {
		primaryTable[0xC7+uint8(i)<<3] = Opcode{"RST " + hexByte(vector), rst(vector)}
	}

	// 0x04,0x0C,... INC r ; 0x05,0x0D,... DEC r ; 0x06,0x0E,... LD r,n
	for i, reg := range byteRegOrder {
		base := uint8(i) << 3
		primaryTable[0x04+base] = Opcode{"INC " + byteRegNames[i], incOperand(reg)}
		primaryTable[0x05+base] = Opcode{"DEC " + byteRegNames[i], decOperand(reg)}
		primaryTable[0x06+base] = Opcode{"LD " + byteRegNames[i] + ",n", ldRN(reg)}
	}

	// 0x40-0x7F: LD r,r' (0x76 already claimed as HALT above).
	for dstIdx, dst := range byteRegOrder {
		for srcIdx, src := range byteRegOrder {
			opcode := 0x40 + uint8(dstIdx)<<3 + uint8(srcIdx)
			if opcode == 0x76 {
				continue
			}
			primaryTable[opcode] = Opcode{"LD " + byteRegNames[dstIdx] + "," + byteRegNames[srcIdx], ldRR(dst, src)}
		}
	}

	// 0x80-0xBF: ALU A,r ; 0xC6,0xCE,...: ALU A,n.
	for opIdx := 0; opIdx < 8; opIdx++ {
		op := aluOp(opIdx)
		for srcIdx, src := range byteRegOrder {
			opcode := 0x80 + uint8(opIdx)<<3 + uint8(srcIdx)
			primaryTable[opcode] = Opcode{aluNames[opIdx] + " A," + byteRegNames[srcIdx], aluWithOperand(op, src)}
		}
		primaryTable[0xC6+uint8(opIdx)<<3] = Opcode{aluNames[opIdx] + " A,n", aluWithImmediate(op)}
	}
}

// accRotate builds the non-prefixed accumulator rotates that don't consult
// the incoming carry (RLCA/RRCA); Z is always forced to 0.
func accRotate(rot func(uint8) (uint8, bool), name string) func(*CPU) error {
	return func(c *CPU) error {
		result, carryOut := rot(c.A)
		c.A = c.applyRotate(result, carryOut, true)
		return nil
	}
}

// accRotateCarry builds RLA/RRA, which rotate through the carry flag.
func accRotateCarry(rot func(uint8, bool) (uint8, bool), name string) func(*CPU) error {
	return func(c *CPU) error {
		result, carryOut := rot(c.A, c.Flag(FlagCarry))
		c.A = c.applyRotate(result, carryOut, true)
		return nil
	}
}

func buildCBTable() {
	rotFamilies := []func(*CPU, byteRegister) error{
		cbRotate(rlc),
		cbRotate(rrc),
		cbRotateCarry(rl),
		cbRotateCarry(rr),
		cbShift(sla),
		cbShift(sra),
		cbSwap,
		cbShift(srl),
	}
	rotNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	for familyIdx, fn := range rotFamilies {
		family := fn
		for srcIdx, src := range byteRegOrder {
			opcode := uint8(familyIdx)<<3 + uint8(srcIdx)
			reg := src
			cbTable[opcode] = Opcode{rotNames[familyIdx] + " " + byteRegNames[srcIdx], func(c *CPU) error {
				return family(c, reg)
			}}
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		for srcIdx, src := range byteRegOrder {
			b, reg := bit, src
			opcode := 0x40 + b<<3 + uint8(srcIdx)
			cbTable[opcode] = Opcode{fmt.Sprintf("BIT %d,%s", b, byteRegNames[srcIdx]), func(c *CPU) error {
				v, err := c.readOperand(reg)
				if err != nil {
					return err
				}
				c.testBit(v, b)
				return nil
			}}

			opcode = 0x80 + b<<3 + uint8(srcIdx)
			cbTable[opcode] = Opcode{fmt.Sprintf("RES %d,%s", b, byteRegNames[srcIdx]), func(c *CPU) error {
				v, err := c.readOperand(reg)
				if err != nil {
					return err
				}
				return c.writeOperand(reg, v&^(1<<b))
			}}

			opcode = 0xC0 + b<<3 + uint8(srcIdx)
			cbTable[opcode] = Opcode{fmt.Sprintf("SET %d,%s", b, byteRegNames[srcIdx]), func(c *CPU) error {
				v, err := c.readOperand(reg)
				if err != nil {
					return err
				}
				return c.writeOperand(reg, v|(1<<b))
			}}
		}
	}
}

func cbRotate(rot func(uint8) (uint8, bool)) func(*CPU, byteRegister) error {
	return func(c *CPU, reg byteRegister) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		result, carryOut := rot(v)
		return c.writeOperand(reg, c.applyRotate(result, carryOut, false))
	}
}

func cbRotateCarry(rot func(uint8, bool) (uint8, bool)) func(*CPU, byteRegister) error {
	return func(c *CPU, reg byteRegister) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		result, carryOut := rot(v, c.Flag(FlagCarry))
		return c.writeOperand(reg, c.applyRotate(result, carryOut, false))
	}
}

func cbShift(sh func(uint8) (uint8, bool)) func(*CPU, byteRegister) error {
	return func(c *CPU, reg byteRegister) error {
		v, err := c.readOperand(reg)
		if err != nil {
			return err
		}
		result, carryOut := sh(v)
		return c.writeOperand(reg, c.applyShift(result, carryOut))
	}
}

func cbSwap(c *CPU, reg byteRegister) error {
	v, err := c.readOperand(reg)
	if err != nil {
		return err
	}
	return c.writeOperand(reg, c.applySwap(swap(v)))
}
